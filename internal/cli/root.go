// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "horizonctl",
	Short: "Horizon CLI - asset and IT-operations client",
	Long: `horizonctl is the command-line client for the Horizon asset/IT-operations
backend. Use it to sign in, inspect per-country inventory, search assets and
manage your account.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Horizon API server URL (defaults to HORIZON_SERVER)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(searchCmd)
}
