// internal/auth/service.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	xerrors "horizon-client/internal/pkg/errors"
	"horizon-client/internal/pkg/token"
	"horizon-client/internal/storage"
	"horizon-client/internal/telemetry"

	"go.uber.org/zap"
)

const (
	genericLoginMessage  = "Login failed. Please try again."
	genericChangeMessage = "Password change failed. Please try again."

	// How long logout waits for the pre-clear telemetry notification.
	logoutNotifyTimeout = 2 * time.Second
)

// Service owns the current session: login, logout, token storage, expiry
// checks, password change and lockout queries. There is exactly one session
// per service instance, and the decoded identity is always re-derived from
// the stored token, never mutated on its own.
type Service struct {
	serverURL string
	store     *storage.FileStore
	sink      *telemetry.Sink
	logger    *zap.Logger
	client    *http.Client

	mu       sync.Mutex
	identity *token.Identity
}

func NewService(serverURL string, client *http.Client, store *storage.FileStore, sink *telemetry.Sink, logger *zap.Logger) *Service {
	return &Service{
		serverURL: serverURL,
		store:     store,
		sink:      sink,
		logger:    logger,
		client:    client,
	}
}

// HTTPClient returns a client that attaches the Authorization bearer header
// to every request and otherwise forwards requests unchanged.
func (s *Service) HTTPClient() *http.Client {
	return s.client
}

type LoginResult struct {
	Identity              *token.Identity
	RequirePasswordChange bool
}

type loginResponse struct {
	Success            bool   `json:"success"`
	Token              string `json:"token"`
	MustChangePassword bool   `json:"mustChangePassword"`
	Message            string `json:"message"`
}

// Login authenticates subjectID against the backend. The raw password is
// digested client-side before transmission and never leaves the process in
// clear text. On success the token is persisted before Login returns, so a
// follow-up IsAuthenticated in the same flow already sees the session.
func (s *Service) Login(ctx context.Context, subjectID, rawPassword string) (*LoginResult, error) {
	payload := map[string]string{
		"subjectId":    subjectID,
		"passwordHash": HashPassword(rawPassword),
	}

	var resp loginResponse
	status, err := s.postJSON(ctx, "/login", payload, &resp)
	if err != nil {
		s.logger.Error("login request failed", zap.String("subject", subjectID), zap.Error(err))
		return nil, xerrors.Wrap(err, "login request failed")
	}

	if status != http.StatusOK || resp.Token == "" {
		message := resp.Message
		if message == "" {
			message = genericLoginMessage
		}
		s.sink.Emit(telemetry.Event{
			Level:   "warn",
			Event:   "login",
			User:    subjectID,
			Success: false,
			Message: message,
		})
		return nil, &xerrors.AuthError{Message: message}
	}

	if err := s.store.SaveToken(resp.Token); err != nil {
		return nil, xerrors.Wrap(err, "failed to persist token")
	}

	identity, err := token.Decode(resp.Token)
	if err != nil {
		// A token we cannot decode is useless as a session; drop it.
		_ = s.store.Clear()
		return nil, xerrors.Wrap(err, "server returned an unusable token")
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	s.sink.Emit(telemetry.Event{
		Event:   "login",
		User:    subjectID,
		Success: true,
	})
	s.logger.Info("user logged in",
		zap.String("subject", identity.SubjectID),
		zap.String("role", identity.Role),
	)

	return &LoginResult{Identity: identity, RequirePasswordChange: resp.MustChangePassword}, nil
}

// IsAuthenticated reports whether a structurally valid, unexpired token is
// stored. A token that fails to decode is treated exactly like an absent one.
// Expired sessions self-clean: detecting expiry triggers Logout before
// returning false, so this call is not side-effect free. Callers that need
// both the check and the identity must call IsAuthenticated first and
// CurrentUser second within the same flow.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	stored := s.store.LoadToken()
	if stored == "" {
		return false
	}

	identity, err := token.Decode(stored)
	if err != nil {
		return false
	}

	if identity.Expired(time.Now()) {
		s.logger.Info("session expired, logging out", zap.String("subject", identity.SubjectID))
		s.Logout(ctx)
		return false
	}
	return true
}

// CurrentUser returns the decoded identity of the stored token, or nil when
// there is no decodable session. The decode result is cached for the lifetime
// of this service instance: if the stored token is rotated by another process
// the cached identity stays stale until the next Login or Logout. Known
// staleness window, kept deliberately.
func (s *Service) CurrentUser() *token.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity != nil {
		return s.identity
	}

	stored := s.store.LoadToken()
	if stored == "" {
		return nil
	}
	identity, err := token.Decode(stored)
	if err != nil {
		return nil
	}
	s.identity = identity
	return identity
}

// Logout ends the session best-effort. The telemetry notification goes out
// first, while the token is still present for the sink's request, but the
// wait is bounded: a dead sink cannot keep credentials alive. Local state is
// always invalidated, whatever happened before.
func (s *Service) Logout(ctx context.Context) {
	var user string
	if id := s.CurrentUser(); id != nil {
		user = id.SubjectID
	}

	s.sink.Emit(telemetry.Event{
		Event:   "logout",
		User:    user,
		Success: true,
	})

	notifyCtx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
	defer cancel()
	s.sink.Flush(notifyCtx)

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear session storage", zap.Error(err))
	}

	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	s.logger.Info("logged out", zap.String("subject", user))
}

type changePasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChangePassword validates the new password locally, then submits its digest.
// A password that fails the local policy never reaches the network.
func (s *Service) ChangePassword(ctx context.Context, subjectID, newPassword string) error {
	if check := ValidatePasswordStrength(newPassword); !check.IsValid {
		return fmt.Errorf("%w: %s", xerrors.ErrWeakPassword, check.Message)
	}

	payload := map[string]string{
		"subjectId":       subjectID,
		"newPasswordHash": HashPassword(newPassword),
	}

	var resp changePasswordResponse
	status, err := s.postJSON(ctx, "/change-password", payload, &resp)
	if err != nil {
		return xerrors.Wrap(err, "change password request failed")
	}
	if status != http.StatusOK || !resp.Success {
		message := resp.Message
		if message == "" {
			message = genericChangeMessage
		}
		return &xerrors.AuthError{Message: message}
	}

	s.sink.Emit(telemetry.Event{
		Event:   "password_change",
		User:    subjectID,
		Success: true,
	})
	return nil
}

type LockInfo struct {
	IsLocked      bool  `json:"isLocked"`
	RemainingTime int64 `json:"remainingTime"`
}

type AttemptInfo struct {
	RemainingAttempts int  `json:"remainingAttempts"`
	IsLocked          bool `json:"isLocked"`
}

// GetLockInfo asks the server whether the account is locked out. Every
// failure path degrades to "not locked": the lockout check is a monitoring
// path and must never fail the login flow closed.
func (s *Service) GetLockInfo(ctx context.Context, subjectID string) LockInfo {
	var info LockInfo
	status, err := s.postJSON(ctx, "/check-lockout", map[string]string{"subjectId": subjectID}, &info)
	if err != nil || status != http.StatusOK {
		s.logger.Debug("lockout check unavailable", zap.String("subject", subjectID), zap.Error(err))
		return LockInfo{}
	}
	return info
}

// RecordFailedAttempt reports a failed login to the server's attempt counter.
// Degrades to a no-op result on any failure.
func (s *Service) RecordFailedAttempt(ctx context.Context, subjectID string) AttemptInfo {
	var info AttemptInfo
	status, err := s.postJSON(ctx, "/record-failed-attempt", map[string]string{"subjectId": subjectID}, &info)
	if err != nil || status != http.StatusOK {
		s.logger.Debug("failed-attempt report unavailable", zap.String("subject", subjectID), zap.Error(err))
		return AttemptInfo{}
	}
	return info
}

// ClearFailedAttempts resets the server's attempt counter after a successful
// login. Bearer-authorized, best-effort.
func (s *Service) ClearFailedAttempts(ctx context.Context, subjectID string) {
	status, err := s.postJSON(ctx, "/clear-failed-attempts", map[string]string{"subjectId": subjectID}, nil)
	if err != nil || status != http.StatusOK {
		s.logger.Debug("failed-attempt reset unavailable", zap.String("subject", subjectID), zap.Error(err))
	}
}

// postJSON posts payload to path on the backend and decodes the body into out
// when provided. The HTTP status is returned for the caller to interpret;
// non-2xx bodies are still decoded since the backend sends its message there.
func (s *Service) postJSON(ctx context.Context, path string, payload any, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		// Malformed bodies on error statuses are fine, the status decides.
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil && resp.StatusCode < 400 {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", decodeErr)
		}
	}
	return resp.StatusCode, nil
}
