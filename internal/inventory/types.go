// internal/inventory/types.go
package inventory

// Known location-type tags. Unknown tags pass through untouched; rendering
// them is a presentation concern.
const (
	LocationTypeOffice     = "office"
	LocationTypeWarehouse  = "warehouse"
	LocationTypeFactory    = "factory"
	LocationTypeDatacenter = "datacenter"
	LocationTypeStore      = "store"
)

// Location is one site within a country. Code is unique within its country.
type Location struct {
	Name string  `json:"name"`
	Code string  `json:"code"`
	City string  `json:"city"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Country is the normalized per-country inventory entry. Every numeric is a
// concrete integer; normalization guarantees no null ever reaches consumers
// doing arithmetic.
type Country struct {
	EmployeeCount  int            `json:"employeeCount"`
	DeviceCount    int            `json:"deviceCount"`
	NetworkDevices map[string]int `json:"networkDevices"`
	Locations      []Location     `json:"locations"`
}

// Snapshot is the normalized in-memory mirror of backend inventory data,
// keyed by country code. It is replaced wholesale on each load, never merged.
type Snapshot map[string]Country

// RawPayload is the backend wire shape of GET /data/inventory and
// POST /data/save.
type RawPayload struct {
	Countries map[string]RawCountry `json:"countries"`
}

// RawCountry mirrors the backend field names. Numerics are pointers because
// the backend omits or nulls fields it has no data for.
type RawCountry struct {
	Employee            *int       `json:"employee"`
	EnduserMachine      *int       `json:"enduser_machine"`
	Router              *int       `json:"router"`
	Switch              *int       `json:"switch"`
	AP                  *int       `json:"ap"`
	Firewall            *int       `json:"firewall"`
	UDS                 *int       `json:"uds"`
	LocationCoordinates []Location `json:"locationCoordinates"`
}

// Totals aggregates the whole snapshot for dashboard counters.
type Totals struct {
	Countries      int
	Employees      int
	Devices        int
	Locations      int
	NetworkDevices map[string]int
}
