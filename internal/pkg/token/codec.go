// internal/pkg/token/codec.go
package token

import (
	"fmt"
	"strings"
	"time"

	xerrors "horizon-client/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Candidate claim keys, checked in priority order. The backend has shipped
// several generations of token payloads, so identity fields live under
// alternate names depending on when the token was issued.
var (
	subjectKeys     = []string{"sub", "username"}
	displayNameKeys = []string{"displayName", "name", "fullName"}
	roleKeys        = []string{"role", "userRole"}
)

const countriesKey = "countries"

// Identity is the decoded claims payload of a bearer token.
type Identity struct {
	SubjectID   string
	DisplayName string
	Role        string
	Countries   []string
	ExpiresAt   int64 // unix seconds, zero when the claim is absent
}

// Expired reports whether the identity's expiry is at or before now.
func (id *Identity) Expired(now time.Time) bool {
	return now.Unix() >= id.ExpiresAt
}

// HasCountry reports whether the identity is scoped to the given country code.
func (id *Identity) HasCountry(code string) bool {
	for _, c := range id.Countries {
		if c == code {
			return true
		}
	}
	return false
}

// Decode extracts the claims payload of a compact three-segment bearer token.
// The signature is NOT verified here: integrity is enforced server-side on
// every authenticated request, this is a pure structural decode.
func Decode(tokenString string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTokenDecode, err)
	}

	id := &Identity{
		SubjectID:   firstPresent(claims, subjectKeys),
		DisplayName: firstPresent(claims, displayNameKeys),
		Role:        firstPresent(claims, roleKeys),
		Countries:   splitCountries(firstPresent(claims, []string{countriesKey})),
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTokenDecode, err)
	}
	if exp != nil {
		id.ExpiresAt = exp.Unix()
	}

	return id, nil
}

// firstPresent returns the first candidate claim that holds a non-empty
// string, keeping the lookup over alternate key names auditable in one place.
func firstPresent(claims jwt.MapClaims, keys []string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// splitCountries parses a comma-separated country-code claim into a
// deduplicated list in appearance order. Empty and whitespace-only entries
// are dropped.
func splitCountries(raw string) []string {
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
