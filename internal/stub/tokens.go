// internal/stub/tokens.go
package stub

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// TokenIssuer mints and verifies the HS256 bearer tokens the stub hands out.
// The claim layout matches what the production backend issues: subject,
// display name, role, a comma-separated countries string and a unix-seconds
// expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) Issue(user *User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         user.SubjectID,
		"displayName": user.DisplayName,
		"role":        user.Role,
		"countries":   strings.Join(user.Countries, ","),
		"iat":         now.Unix(),
		"exp":         now.Add(t.ttl).Unix(),
		"jti":         ulid.Make().String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}

// Verify checks the signature and expiry and returns the subject.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	tok, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}
