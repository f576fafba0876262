// internal/inventory/search.go
package inventory

import (
	"sort"
	"strings"
)

// SearchResult is one hit of the global search over the snapshot.
type SearchResult struct {
	Country  string
	Kind     string // "country" or "location"
	Location *Location
}

// Search runs a case-insensitive substring match over country codes and
// location names, codes and cities. Results are ordered by country code,
// countries before their locations, locations by code.
func (c *Cache) Search(query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []SearchResult
	for code, country := range c.snapshot {
		if strings.Contains(strings.ToLower(code), query) {
			results = append(results, SearchResult{Country: code, Kind: "country"})
		}
		for i := range country.Locations {
			loc := country.Locations[i]
			if matchesLocation(&loc, query) {
				results = append(results, SearchResult{Country: code, Kind: "location", Location: &loc})
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if (a.Location == nil) != (b.Location == nil) {
			return a.Location == nil
		}
		if a.Location == nil {
			return false
		}
		return a.Location.Code < b.Location.Code
	})
	return results
}

func matchesLocation(loc *Location, query string) bool {
	return strings.Contains(strings.ToLower(loc.Name), query) ||
		strings.Contains(strings.ToLower(loc.Code), query) ||
		strings.Contains(strings.ToLower(loc.City), query)
}
