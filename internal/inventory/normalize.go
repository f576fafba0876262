// internal/inventory/normalize.go
package inventory

// networkFieldMap is the fixed, case-sensitive translation from backend
// network-device field names to canonical snapshot keys. The backend sends
// lowercase "uds" while the canonical key is "UDS"; the table is the contract
// and must not be inferred from casing rules.
var networkFieldMap = map[string]string{
	"router":   "router",
	"switch":   "switch",
	"ap":       "ap",
	"firewall": "firewall",
	"uds":      "UDS",
}

// Normalize maps a raw backend payload to the canonical snapshot shape.
// Absent or null numerics become 0, location order passes through verbatim,
// and the result is built from scratch so applying it twice to the same
// input replaces rather than accumulates.
func Normalize(raw *RawPayload) Snapshot {
	snapshot := make(Snapshot)
	if raw == nil {
		return snapshot
	}

	for code, rc := range raw.Countries {
		rawNetwork := map[string]*int{
			"router":   rc.Router,
			"switch":   rc.Switch,
			"ap":       rc.AP,
			"firewall": rc.Firewall,
			"uds":      rc.UDS,
		}

		network := make(map[string]int, len(networkFieldMap))
		for rawKey, canonical := range networkFieldMap {
			network[canonical] = intOrZero(rawNetwork[rawKey])
		}

		snapshot[code] = Country{
			EmployeeCount:  intOrZero(rc.Employee),
			DeviceCount:    intOrZero(rc.EnduserMachine),
			NetworkDevices: network,
			Locations:      append([]Location(nil), rc.LocationCoordinates...),
		}
	}
	return snapshot
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
