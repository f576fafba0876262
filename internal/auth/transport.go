// internal/auth/transport.go
package auth

import (
	"net/http"
	"time"
)

// tokenSource yields the current bearer token, empty when logged out.
type tokenSource interface {
	LoadToken() string
}

// NewBearerClient builds an http.Client whose requests always carry the
// Authorization bearer header sourced from tokens.
func NewBearerClient(tokens tokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &bearerTransport{tokens: tokens},
	}
}

// bearerTransport attaches the Authorization header to every outgoing
// request. The header key is always present, with an empty-string bearer when
// no token is stored, so the server can distinguish "client speaks the
// protocol" from a missing header.
type bearerTransport struct {
	tokens tokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.tokens.LoadToken())
	return base.RoundTrip(clone)
}
