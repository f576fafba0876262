// internal/cli/status.go
package cli

import (
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		// IsAuthenticated comes first so an expired session self-cleans
		// before the identity is read.
		if !app.auth.IsAuthenticated(cmd.Context()) {
			pterm.Warning.Println("Not logged in")
			return nil
		}

		identity := app.auth.CurrentUser()
		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("Subject:   %s\n", identity.SubjectID)
		pterm.Info.Printf("Name:      %s\n", identity.DisplayName)
		pterm.Info.Printf("Role:      %s\n", identity.Role)
		pterm.Info.Printf("Countries: %s\n", strings.Join(identity.Countries, ", "))
		pterm.Info.Printf("Expires:   %s\n", time.Unix(identity.ExpiresAt, 0).Format(time.RFC1123))
		return nil
	},
}
