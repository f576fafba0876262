// internal/cli/logout.go
package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from Horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		app.auth.Logout(cmd.Context())
		pterm.Success.Println("Logged out")
		return nil
	},
}
