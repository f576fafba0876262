// internal/telemetry/sink.go
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Event is one observability record shipped to the backend log sink.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Event     string         `json:"event"`
	User      string         `json:"user,omitempty"`
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`

	// Client metadata, filled in by the sink.
	Hostname   string `json:"hostname,omitempty"`
	Platform   string `json:"platform,omitempty"`
	AppVersion string `json:"appVersion,omitempty"`
}

// Sink ships events to the backend's POST /logs endpoint on a best-effort
// side channel. Emit never returns an error and never blocks the caller's
// success path: delivery runs detached, and any failure is swallowed after a
// local debug log. The sink is structurally incapable of failing a primary
// user action.
type Sink struct {
	client  *http.Client
	url     string
	version string
	logger  *zap.Logger

	wg sync.WaitGroup
}

func NewSink(client *http.Client, serverURL, appVersion string, logger *zap.Logger) *Sink {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Sink{
		client:  client,
		url:     serverURL + "/logs",
		version: appVersion,
		logger:  logger,
	}
}

// Emit ships the event asynchronously. Safe to call from any goroutine.
func (s *Sink) Emit(event Event) {
	event.ID = ulid.Make().String()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Level == "" {
		event.Level = "info"
	}
	event.Hostname, _ = os.Hostname()
	event.Platform = runtime.GOOS
	event.AppVersion = s.version

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.send(event)
	}()
}

// Flush waits for in-flight deliveries, bounded by ctx. Callers that must
// notify before tearing down credentials (logout) use this so a dead sink
// cannot hold them up forever.
func (s *Sink) Flush(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Sink) send(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Debug("telemetry event not serializable", zap.Error(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.logger.Debug("telemetry request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("telemetry delivery failed", zap.String("event", event.Event), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.logger.Debug("telemetry sink rejected event",
			zap.String("event", event.Event),
			zap.Int("status", resp.StatusCode),
		)
	}
}
