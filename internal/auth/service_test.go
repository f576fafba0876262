package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	xerrors "horizon-client/internal/pkg/errors"
	"horizon-client/internal/storage"
	"horizon-client/internal/telemetry"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signTestToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "jdoe",
		"displayName": "Jane Doe",
		"role":        "admin",
		"countries":   "TR,GR",
		"exp":         expiresAt.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// newTestService wires a Service against backendURL with isolated storage.
// sinkURL lets tests point the telemetry sink somewhere else, e.g. at a dead
// endpoint; empty means same as the backend.
func newTestService(t *testing.T, backendURL, sinkURL string) (*Service, *storage.FileStore) {
	t.Helper()
	store, err := storage.New(t.TempDir() + "/horizon")
	require.NoError(t, err)

	if sinkURL == "" {
		sinkURL = backendURL
	}
	client := NewBearerClient(store, 5*time.Second)
	sink := telemetry.NewSink(client, sinkURL, "test", zap.NewNop())
	return NewService(backendURL, client, store, sink, zap.NewNop()), store
}

func TestLoginSuccessPersistsTokenBeforeReturning(t *testing.T) {
	token := signTestToken(t, time.Now().Add(time.Hour))

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "jdoe", req["subjectId"])
			assert.Equal(t, HashPassword("Horizon123"), req["passwordHash"])
			json.NewEncoder(w).Encode(map[string]any{
				"success":            true,
				"token":              token,
				"mustChangePassword": true,
			})
		case "/logs":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer backend.Close()

	svc, store := newTestService(t, backend.URL, "")

	result, err := svc.Login(context.Background(), "jdoe", "Horizon123")
	require.NoError(t, err)

	assert.True(t, result.RequirePasswordChange)
	require.NotNil(t, result.Identity)
	assert.Equal(t, "Jane Doe", result.Identity.DisplayName)
	assert.Equal(t, []string{"TR", "GR"}, result.Identity.Countries)

	// Token already persisted: the same flow sees the session before any
	// password-change step runs.
	assert.Equal(t, token, store.LoadToken())
	assert.True(t, svc.IsAuthenticated(context.Background()))
}

func TestLoginRejectedPassesServerMessageThrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	svc, store := newTestService(t, backend.URL, "")

	_, err := svc.Login(context.Background(), "jdoe", "wrong")
	require.Error(t, err)

	var authErr *xerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid credentials", authErr.Message)
	assert.Equal(t, xerrors.AuthKindInvalidCredentials, authErr.Kind())
	assert.Empty(t, store.LoadToken())
}

func TestLoginWithoutTokenFallsBackToGenericMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer backend.Close()

	svc, _ := newTestService(t, backend.URL, "")

	_, err := svc.Login(context.Background(), "jdoe", "pw")
	require.Error(t, err)

	var authErr *xerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, genericLoginMessage, authErr.Message)
	assert.Equal(t, xerrors.AuthKindGeneric, authErr.Kind())
}

func TestIsAuthenticatedValidToken(t *testing.T) {
	svc, store := newTestService(t, "http://127.0.0.1:0", "")
	require.NoError(t, store.SaveToken(signTestToken(t, time.Now().Add(time.Hour))))

	assert.True(t, svc.IsAuthenticated(context.Background()))
	// No side effects on a valid session.
	assert.NotEmpty(t, store.LoadToken())
}

func TestIsAuthenticatedExpiredTokenSelfCleans(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	svc, store := newTestService(t, backend.URL, "")
	require.NoError(t, store.SaveToken(signTestToken(t, time.Now().Add(-time.Hour))))

	assert.False(t, svc.IsAuthenticated(context.Background()))
	// Expiry triggered the logout side effect: storage is cleared.
	assert.Empty(t, store.LoadToken())
}

func TestIsAuthenticatedMalformedToken(t *testing.T) {
	svc, store := newTestService(t, "http://127.0.0.1:0", "")
	require.NoError(t, store.SaveToken("not.a.token"))

	assert.False(t, svc.IsAuthenticated(context.Background()))
}

func TestCurrentUserCachesDecodedIdentity(t *testing.T) {
	svc, store := newTestService(t, "http://127.0.0.1:0", "")
	require.NoError(t, store.SaveToken(signTestToken(t, time.Now().Add(time.Hour))))

	first := svc.CurrentUser()
	require.NotNil(t, first)
	assert.Equal(t, "jdoe", first.SubjectID)

	// Rotating the stored token externally leaves the cached identity
	// stale until login/logout resets it. Known window, asserted as such.
	require.NoError(t, store.SaveToken("garbage"))
	assert.Same(t, first, svc.CurrentUser())
}

func TestLogoutClearsStorageEvenWhenSinkIsDead(t *testing.T) {
	svc, store := newTestService(t, "http://127.0.0.1:0", "http://127.0.0.1:1")
	require.NoError(t, store.SaveToken(signTestToken(t, time.Now().Add(time.Hour))))

	done := make(chan struct{})
	go func() {
		svc.Logout(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logout did not finish within the bounded notify window")
	}
	assert.Empty(t, store.LoadToken())
	assert.Nil(t, svc.CurrentUser())
}

func TestChangePasswordValidatesLocallyFirst(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	svc, _ := newTestService(t, backend.URL, "http://127.0.0.1:1")

	err := svc.ChangePassword(context.Background(), "jdoe", "short1")
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrWeakPassword)
	assert.Zero(t, hits.Load(), "invalid password must never reach the network")
}

func TestChangePasswordSendsDigestAndHonorsServerFailure(t *testing.T) {
	var sentHash string
	ok := true
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/change-password" {
			w.WriteHeader(http.StatusOK)
			return
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		sentHash = req["newPasswordHash"]
		json.NewEncoder(w).Encode(map[string]any{"success": ok, "message": "password reuse not allowed"})
	}))
	defer backend.Close()

	svc, _ := newTestService(t, backend.URL, "")

	require.NoError(t, svc.ChangePassword(context.Background(), "jdoe", "Password123"))
	assert.Equal(t, HashPassword("Password123"), sentHash)

	ok = false
	err := svc.ChangePassword(context.Background(), "jdoe", "Password123")
	var authErr *xerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "password reuse not allowed", authErr.Message)
}

func TestLockoutQueriesDegradeToSafeDefaults(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer backend.Close()

		svc, _ := newTestService(t, backend.URL, "")
		assert.Equal(t, LockInfo{}, svc.GetLockInfo(context.Background(), "jdoe"))
		assert.Equal(t, AttemptInfo{}, svc.RecordFailedAttempt(context.Background(), "jdoe"))
		svc.ClearFailedAttempts(context.Background(), "jdoe")
	})

	t.Run("unreachable server", func(t *testing.T) {
		svc, _ := newTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
		assert.Equal(t, LockInfo{}, svc.GetLockInfo(context.Background(), "jdoe"))
		assert.Equal(t, AttemptInfo{}, svc.RecordFailedAttempt(context.Background(), "jdoe"))
		svc.ClearFailedAttempts(context.Background(), "jdoe")
	})

	t.Run("server answers", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/check-lockout":
				json.NewEncoder(w).Encode(map[string]any{"isLocked": true, "remainingTime": 120})
			case "/record-failed-attempt":
				json.NewEncoder(w).Encode(map[string]any{"remainingAttempts": 2, "isLocked": false})
			default:
				w.WriteHeader(http.StatusOK)
			}
		}))
		defer backend.Close()

		svc, _ := newTestService(t, backend.URL, "")
		assert.Equal(t, LockInfo{IsLocked: true, RemainingTime: 120}, svc.GetLockInfo(context.Background(), "jdoe"))
		assert.Equal(t, AttemptInfo{RemainingAttempts: 2}, svc.RecordFailedAttempt(context.Background(), "jdoe"))
	})
}

func TestBearerHeaderAlwaysPresent(t *testing.T) {
	headers := make(chan string, 2)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	svc, store := newTestService(t, backend.URL, "")

	// Logged out: the header key is still sent, with an empty bearer. The
	// transport writes "Bearer " and HTTP strips the trailing whitespace in
	// transit, so the server observes the bare scheme.
	resp, err := svc.HTTPClient().Get(backend.URL + "/data/inventory")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer", <-headers)

	require.NoError(t, store.SaveToken("sometoken"))
	resp, err = svc.HTTPClient().Get(backend.URL + "/data/inventory")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer sometoken", <-headers)
}
