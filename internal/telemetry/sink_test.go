package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmitDeliversEventWithMetadata(t *testing.T) {
	received := make(chan Event, 1)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logs", r.URL.Path)
		var event Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		json.NewEncoder(w).Encode(map[string]string{"file": "client.log"})
	}))
	defer backend.Close()

	sink := NewSink(backend.Client(), backend.URL, "1.0.0", zap.NewNop())
	sink.Emit(Event{Event: "login", User: "jdoe", Success: true})

	select {
	case event := <-received:
		assert.Equal(t, "login", event.Event)
		assert.Equal(t, "jdoe", event.User)
		assert.True(t, event.Success)
		assert.Equal(t, "info", event.Level)
		assert.Equal(t, "1.0.0", event.AppVersion)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestEmitSwallowsDeliveryFailures(t *testing.T) {
	sink := NewSink(&http.Client{Timeout: time.Second}, "http://127.0.0.1:1", "1.0.0", zap.NewNop())

	// Must not panic or surface anything to the caller.
	sink.Emit(Event{Event: "login", Success: false})
	sink.Flush(context.Background())
}

func TestEmitSwallowsRejectedEvents(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer backend.Close()

	sink := NewSink(backend.Client(), backend.URL, "1.0.0", zap.NewNop())
	sink.Emit(Event{Event: "logout"})
	sink.Flush(context.Background())
}

func TestFlushIsBoundedByContext(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		backend.Close()
	}()

	sink := NewSink(backend.Client(), backend.URL, "1.0.0", zap.NewNop())
	sink.Emit(Event{Event: "logout"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	sink.Flush(ctx)
	assert.Less(t, time.Since(start), 2*time.Second, "flush must not wait for a stuck sink")
}
