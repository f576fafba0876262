// internal/cli/login.go
package cli

import (
	"errors"
	"fmt"

	xerrors "horizon-client/internal/pkg/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <subject-id>",
	Short: "Authenticate with Horizon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		subjectID := args[0]
		ctx := cmd.Context()

		// The lockout check is advisory: when the server cannot answer, the
		// zero value means "not locked" and the login proceeds.
		if lock := app.auth.GetLockInfo(ctx, subjectID); lock.IsLocked {
			pterm.Error.Printf("Account is locked. Try again in %d second(s).\n", lock.RemainingTime)
			return fmt.Errorf("account locked")
		}

		password := loginPassword
		if password == "" {
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return err
			}
		}

		result, err := app.auth.Login(ctx, subjectID, password)
		if err != nil {
			var authErr *xerrors.AuthError
			if errors.As(err, &authErr) {
				attempt := app.auth.RecordFailedAttempt(ctx, subjectID)
				switch authErr.Kind() {
				case xerrors.AuthKindLocked:
					pterm.Error.Println(authErr.Message)
				case xerrors.AuthKindInvalidCredentials:
					if attempt.RemainingAttempts > 0 {
						pterm.Error.Printf("Invalid credentials. %d attempt(s) remaining.\n", attempt.RemainingAttempts)
					} else {
						pterm.Error.Println("Invalid credentials.")
					}
				default:
					pterm.Error.Println(authErr.Message)
				}
			}
			return err
		}

		app.auth.ClearFailedAttempts(ctx, subjectID)

		pterm.Success.Printf("Logged in as %s (%s)\n", result.Identity.DisplayName, result.Identity.Role)
		if len(result.Identity.Countries) > 0 {
			pterm.Info.Printf("Country scope: %v\n", result.Identity.Countries)
		}
		if result.RequirePasswordChange {
			pterm.Warning.Println("The server requires a password change. Run: horizonctl passwd")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted interactively when omitted)")
}
