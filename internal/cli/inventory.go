// internal/cli/inventory.go
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	xerrors "horizon-client/internal/pkg/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	inventoryCountry string
	inventoryCSV     string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show per-country inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(serverURL)
		if err != nil {
			return err
		}
		defer app.close()

		if !app.auth.IsAuthenticated(cmd.Context()) {
			return xerrors.ErrNotLoggedIn
		}

		result, err := app.cache.Load(cmd.Context())
		if err != nil {
			if xerrors.Is(err, xerrors.ErrDataLoad) {
				pterm.Error.Println("Inventory unavailable: server unreachable and no local copy")
			}
			return err
		}
		if !result.FromServer {
			pterm.Warning.Println("Server unreachable - showing stale local data")
		}

		if inventoryCSV != "" {
			return exportCSV(app, inventoryCountry, inventoryCSV)
		}
		if inventoryCountry != "" {
			return renderCountry(app, inventoryCountry)
		}
		return renderOverview(app)
	},
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryCountry, "country", "", "Limit to one country code")
	inventoryCmd.Flags().StringVar(&inventoryCSV, "csv", "", "Write locations as CSV to the given file (- for stdout)")
}

func renderOverview(app *app) error {
	snapshot := app.cache.Snapshot()

	codes := make([]string, 0, len(snapshot))
	for code := range snapshot {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := pterm.TableData{{"Country", "Employees", "Devices", "Routers", "Switches", "APs", "Firewalls", "UDS", "Locations"}}
	for _, code := range codes {
		country := snapshot[code]
		network := country.NetworkDevices
		rows = append(rows, []string{
			code,
			strconv.Itoa(country.EmployeeCount),
			strconv.Itoa(country.DeviceCount),
			strconv.Itoa(network["router"]),
			strconv.Itoa(network["switch"]),
			strconv.Itoa(network["ap"]),
			strconv.Itoa(network["firewall"]),
			strconv.Itoa(network["UDS"]),
			strconv.Itoa(len(country.Locations)),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	totals := app.cache.Totals()
	pterm.Info.Printf("%d countries, %d employees, %d devices, %d locations\n",
		totals.Countries, totals.Employees, totals.Devices, totals.Locations)
	return nil
}

func renderCountry(app *app, code string) error {
	country, ok := app.cache.Country(code)
	if !ok {
		return fmt.Errorf("unknown country %q", code)
	}

	pterm.DefaultSection.Println(code)
	pterm.Info.Printf("Employees: %d  Devices: %d\n", country.EmployeeCount, country.DeviceCount)

	rows := pterm.TableData{{"Code", "Name", "City", "Type", "Lat", "Lng"}}
	for _, loc := range country.Locations {
		rows = append(rows, []string{
			loc.Code,
			loc.Name,
			loc.City,
			loc.Type,
			strconv.FormatFloat(loc.Lat, 'f', 4, 64),
			strconv.FormatFloat(loc.Lng, 'f', 4, 64),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func exportCSV(app *app, country, target string) error {
	if target == "-" {
		return app.cache.ExportCSV(os.Stdout, country)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer f.Close()

	if err := app.cache.ExportCSV(f, country); err != nil {
		return err
	}
	pterm.Success.Printf("Exported to %s\n", target)
	return nil
}
