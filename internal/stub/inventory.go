// internal/stub/inventory.go
package stub

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"horizon-client/internal/inventory"
)

// InventoryStore holds the stub's inventory payload in memory, seeded from a
// file or built-in defaults and replaced wholesale on save.
type InventoryStore struct {
	mu      sync.RWMutex
	payload inventory.RawPayload
}

func LoadInventory(path string) (*InventoryStore, error) {
	payload := defaultInventory()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory seed: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse inventory seed: %w", err)
		}
	}
	return &InventoryStore{payload: payload}, nil
}

func (s *InventoryStore) Payload() inventory.RawPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payload
}

func (s *InventoryStore) Replace(payload inventory.RawPayload) {
	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()
}

func intPtr(v int) *int { return &v }

func defaultInventory() inventory.RawPayload {
	return inventory.RawPayload{
		Countries: map[string]inventory.RawCountry{
			"TR": {
				Employee:       intPtr(240),
				EnduserMachine: intPtr(310),
				Router:         intPtr(12),
				Switch:         intPtr(34),
				AP:             intPtr(58),
				Firewall:       intPtr(4),
				UDS:            intPtr(2),
				LocationCoordinates: []inventory.Location{
					{Name: "Istanbul HQ", Code: "IST-1", City: "Istanbul", Type: inventory.LocationTypeOffice, Lat: 41.0082, Lng: 28.9784},
					{Name: "Ankara Plant", Code: "ANK-1", City: "Ankara", Type: inventory.LocationTypeFactory, Lat: 39.9334, Lng: 32.8597},
				},
			},
			"GR": {
				Employee:       intPtr(85),
				EnduserMachine: intPtr(97),
				Router:         intPtr(5),
				Switch:         intPtr(11),
				AP:             intPtr(19),
				Firewall:       intPtr(2),
				LocationCoordinates: []inventory.Location{
					{Name: "Athens Office", Code: "ATH-1", City: "Athens", Type: inventory.LocationTypeOffice, Lat: 37.9838, Lng: 23.7275},
				},
			},
			"CY": {
				Employee:       intPtr(18),
				EnduserMachine: intPtr(22),
				Router:         intPtr(2),
				Switch:         intPtr(3),
				AP:             intPtr(6),
				LocationCoordinates: []inventory.Location{
					{Name: "Nicosia Depot", Code: "NIC-1", City: "Nicosia", Type: inventory.LocationTypeWarehouse, Lat: 35.1856, Lng: 33.3823},
				},
			},
		},
	}
}
