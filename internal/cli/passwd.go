// internal/cli/passwd.go
package cli

import (
	"fmt"

	"horizon-client/internal/auth"
	xerrors "horizon-client/internal/pkg/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		if !app.auth.IsAuthenticated(cmd.Context()) {
			return xerrors.ErrNotLoggedIn
		}
		identity := app.auth.CurrentUser()

		password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("New password")
		if err != nil {
			return err
		}

		check := auth.ValidatePasswordStrength(password)
		if !check.IsValid {
			pterm.Error.Println(check.Message)
			return fmt.Errorf("%w: %s", xerrors.ErrWeakPassword, check.Message)
		}
		pterm.Info.Printf("Password strength: %s\n", check.Strength)

		confirm, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Confirm password")
		if err != nil {
			return err
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}

		if err := app.auth.ChangePassword(cmd.Context(), identity.SubjectID, password); err != nil {
			return err
		}
		pterm.Success.Println("Password changed")
		return nil
	},
}
