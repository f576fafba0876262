// internal/inventory/cache.go
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	xerrors "horizon-client/internal/pkg/errors"
	"horizon-client/internal/storage"
	"horizon-client/internal/telemetry"

	"go.uber.org/zap"
)

// Cache is the process-wide normalized mirror of backend inventory data.
// Loads replace the snapshot wholesale; nothing is ever merged field by
// field across reloads.
type Cache struct {
	client    *http.Client
	serverURL string
	store     *storage.FileStore
	sink      *telemetry.Sink
	logger    *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

func NewCache(client *http.Client, serverURL string, store *storage.FileStore, sink *telemetry.Sink, logger *zap.Logger) *Cache {
	return &Cache{
		client:    client,
		serverURL: serverURL,
		store:     store,
		sink:      sink,
		logger:    logger,
	}
}

// Ready reports whether a snapshot has been loaded.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}

// Snapshot returns the current snapshot. Nil until the first load completes.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Country looks up one normalized country entry.
func (c *Cache) Country(code string) (Country, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	country, ok := c.snapshot[code]
	return country, ok
}

// LoadResult says where the current snapshot came from. FromServer false
// means the view is running on the stale local cache and should say so.
type LoadResult struct {
	FromServer bool
}

// Load fetches the inventory from the backend, persists the raw payload to
// the local cache slot and replaces the snapshot. When the fetch fails the
// stale local cache is used instead of leaving the view empty; only when
// both paths fail does Load return an error.
func (c *Cache) Load(ctx context.Context) (LoadResult, error) {
	raw, err := c.fetch(ctx)
	if err == nil {
		if data, marshalErr := json.Marshal(raw); marshalErr == nil {
			if saveErr := c.store.SaveCache(data); saveErr != nil {
				c.logger.Warn("failed to persist local inventory cache", zap.Error(saveErr))
			}
		}
		c.replace(Normalize(raw))
		return LoadResult{FromServer: true}, nil
	}

	c.logger.Warn("inventory fetch failed, trying local cache", zap.Error(err))

	data, cacheErr := c.store.LoadCache()
	if cacheErr != nil {
		return LoadResult{}, fmt.Errorf("%w: %v", xerrors.ErrDataLoad, err)
	}
	var stale RawPayload
	if unmarshalErr := json.Unmarshal(data, &stale); unmarshalErr != nil {
		return LoadResult{}, fmt.Errorf("%w: local cache unreadable: %v", xerrors.ErrDataLoad, unmarshalErr)
	}

	c.replace(Normalize(&stale))
	return LoadResult{FromServer: false}, nil
}

// SaveResult reports whether the save reached the server. Synced false means
// the pending payload sits in local storage and must be surfaced to the user
// as degraded, not silently accepted.
type SaveResult struct {
	Synced  bool
	Message string
}

// Save posts the payload to the backend. On any failure the pending state is
// written to the local cache slot so no user data is lost; an error is
// returned only when even that fallback fails.
func (c *Cache) Save(ctx context.Context, payload *RawPayload) (SaveResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to marshal inventory payload: %w", err)
	}

	saveErr := c.postSave(ctx, body)
	if saveErr == nil {
		c.replace(Normalize(payload))
		c.sink.Emit(telemetry.Event{Event: "inventory_save", Success: true})
		return SaveResult{Synced: true}, nil
	}

	c.logger.Warn("inventory save failed, keeping pending state locally", zap.Error(saveErr))
	if fallbackErr := c.store.SaveCache(body); fallbackErr != nil {
		return SaveResult{}, fmt.Errorf("save failed and local fallback failed: %v (save error: %w)", fallbackErr, saveErr)
	}

	c.replace(Normalize(payload))
	c.sink.Emit(telemetry.Event{
		Level:   "warn",
		Event:   "inventory_save",
		Success: false,
		Message: saveErr.Error(),
	})
	return SaveResult{Synced: false, Message: xerrors.MessageOrDefault(saveErr, "saved locally only")}, nil
}

// WaitReady polls at a fixed interval until a snapshot is present, bounded by
// the timeout ceiling. On timeout it returns ErrDataNotReady so the caller
// can take a manual reload path instead of waiting forever.
func (c *Cache) WaitReady(ctx context.Context, interval, timeout time.Duration) error {
	if c.Ready() {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if c.Ready() {
				return nil
			}
		case <-deadline.C:
			return xerrors.ErrDataNotReady
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Totals aggregates the snapshot for the dashboard counters.
func (c *Cache) Totals() Totals {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totals := Totals{NetworkDevices: make(map[string]int)}
	for _, country := range c.snapshot {
		totals.Countries++
		totals.Employees += country.EmployeeCount
		totals.Devices += country.DeviceCount
		totals.Locations += len(country.Locations)
		for key, count := range country.NetworkDevices {
			totals.NetworkDevices[key] += count
		}
	}
	return totals
}

func (c *Cache) replace(snapshot Snapshot) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()
}

func (c *Cache) fetch(ctx context.Context) (*RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/data/inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", xerrors.ErrHTTPStatus, resp.Status)
	}

	var raw RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode inventory payload: %w", err)
	}
	return &raw, nil
}

func (c *Cache) postSave(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/data/save", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", xerrors.ErrHTTPStatus, resp.Status)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode save response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("%w: server reported failure", xerrors.ErrHTTPStatus)
	}
	return nil
}
