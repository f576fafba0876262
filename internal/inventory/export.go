// internal/inventory/export.go
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ExportCSV writes the snapshot's locations as CSV. An empty country exports
// every country; otherwise only the requested one. Rows are ordered by
// country code with each country's locations kept in snapshot order.
func (c *Cache) ExportCSV(w io.Writer, countryCode string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var codes []string
	if countryCode != "" {
		if _, ok := c.snapshot[countryCode]; !ok {
			return fmt.Errorf("unknown country %q", countryCode)
		}
		codes = []string{countryCode}
	} else {
		for code := range c.snapshot {
			codes = append(codes, code)
		}
		sort.Strings(codes)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "code", "name", "city", "type", "lat", "lng"}); err != nil {
		return err
	}

	for _, code := range codes {
		for _, loc := range c.snapshot[code].Locations {
			record := []string{
				code,
				loc.Code,
				loc.Name,
				loc.City,
				loc.Type,
				strconv.FormatFloat(loc.Lat, 'f', -1, 64),
				strconv.FormatFloat(loc.Lng, 'f', -1, 64),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
