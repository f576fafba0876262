// internal/cli/search.go
package cli

import (
	"fmt"

	xerrors "horizon-client/internal/pkg/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search countries and locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		if !app.auth.IsAuthenticated(cmd.Context()) {
			return xerrors.ErrNotLoggedIn
		}

		if _, err := app.cache.Load(cmd.Context()); err != nil {
			if xerrors.Is(err, xerrors.ErrDataLoad) {
				pterm.Error.Println("Inventory unavailable: server unreachable and no local copy")
			}
			return err
		}

		results := app.cache.Search(args[0])
		if len(results) == 0 {
			pterm.Info.Println("No matches")
			return nil
		}

		for _, hit := range results {
			if hit.Kind == "country" {
				pterm.Printf("%s  (country)\n", hit.Country)
				continue
			}
			pterm.Printf("%s  %s - %s, %s (%s)\n",
				hit.Country, hit.Location.Code, hit.Location.Name, hit.Location.City, hit.Location.Type)
		}
		fmt.Println()
		pterm.Info.Printf("%d match(es)\n", len(results))
		return nil
	},
}
