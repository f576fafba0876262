package xerrors

import "strings"

// AuthKind groups server-side login rejections into the buckets the UI layer
// cares about. The backend only sends free-form messages today, so kinds are
// recovered by substring matching. This is a legacy compatibility shim kept
// until the backend emits structured error codes; do not extend the keyword
// lists without coordinating with the server team.
type AuthKind string

const (
	AuthKindInvalidCredentials AuthKind = "invalid_credentials"
	AuthKindLocked             AuthKind = "locked"
	AuthKindExpired            AuthKind = "expired"
	AuthKindGeneric            AuthKind = "generic"
)

// AuthError is a login or password-change rejection carrying the
// server-provided message verbatim.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return ErrLoginFailed
}

// Kind classifies the server message. The distinguishing substrings are part
// of the wire contract with the backend.
func (e *AuthError) Kind() AuthKind {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "locked"):
		return AuthKindLocked
	case strings.Contains(msg, "expired"):
		return AuthKindExpired
	case strings.Contains(msg, "invalid credentials"), strings.Contains(msg, "incorrect"):
		return AuthKindInvalidCredentials
	default:
		return AuthKindGeneric
	}
}
