package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaultsNullsToZero(t *testing.T) {
	// Wire-shaped input: uds is explicitly null, firewall absent entirely.
	rawJSON := `{
		"countries": {
			"TR": {
				"employee": 240,
				"enduser_machine": null,
				"router": 5,
				"uds": null,
				"locationCoordinates": [
					{"name": "Istanbul HQ", "code": "IST-1", "city": "Istanbul", "type": "office", "lat": 41.0082, "lng": 28.9784}
				]
			}
		}
	}`

	var raw RawPayload
	require.NoError(t, json.Unmarshal([]byte(rawJSON), &raw))

	snapshot := Normalize(&raw)
	country, ok := snapshot["TR"]
	require.True(t, ok)

	assert.Equal(t, 240, country.EmployeeCount)
	assert.Equal(t, 0, country.DeviceCount)
	assert.Equal(t, 5, country.NetworkDevices["router"])
	assert.Equal(t, 0, country.NetworkDevices["UDS"])
	assert.Equal(t, 0, country.NetworkDevices["firewall"])

	// Raw "uds" never leaks through; only the canonical key exists.
	_, hasRawKey := country.NetworkDevices["uds"]
	assert.False(t, hasRawKey)
}

func TestNormalizeEveryCanonicalKeyPresent(t *testing.T) {
	snapshot := Normalize(&RawPayload{Countries: map[string]RawCountry{"GSP": {}}})
	country := snapshot["GSP"]

	for _, key := range []string{"router", "switch", "ap", "firewall", "UDS"} {
		count, ok := country.NetworkDevices[key]
		assert.True(t, ok, "missing canonical key %s", key)
		assert.Zero(t, count)
	}
}

func TestNormalizeKeepsLocationOrder(t *testing.T) {
	raw := &RawPayload{Countries: map[string]RawCountry{
		"TR": {LocationCoordinates: []Location{
			{Code: "ZZZ-9", Name: "Last Added"},
			{Code: "AAA-1", Name: "First Alphabetically"},
		}},
	}}

	snapshot := Normalize(raw)
	locations := snapshot["TR"].Locations
	require.Len(t, locations, 2)
	assert.Equal(t, "ZZZ-9", locations[0].Code)
	assert.Equal(t, "AAA-1", locations[1].Code)
}

func TestNormalizeIdempotent(t *testing.T) {
	five := 5
	raw := &RawPayload{Countries: map[string]RawCountry{
		"TR": {Router: &five, LocationCoordinates: []Location{{Code: "IST-1"}}},
		"GR": {},
	}}

	first := Normalize(raw)
	second := Normalize(raw)

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
	assert.Len(t, second["TR"].Locations, 1)
}

func TestNormalizeNilPayload(t *testing.T) {
	snapshot := Normalize(nil)
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}
