// internal/auth/password.go
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode"
	"unicode/utf8"
)

// HashPassword produces the hex-encoded SHA-256 digest sent on the wire in
// place of the raw password. This only obfuscates the transmitted value; the
// server still applies its own secure hashing, and this digest must never be
// treated as the stored credential.
func HashPassword(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

type StrengthResult struct {
	IsValid  bool
	Message  string
	Strength Strength
}

// ValidatePasswordStrength applies the local password policy. IsValid and
// Strength are computed independently: the hard requirement is length >= 8
// plus at least one digit, while the strength score also rewards length >= 12
// and case variety. A password can therefore be valid yet "weak"; product has
// confirmed this is the intended behavior.
func ValidatePasswordStrength(password string) StrengthResult {
	length := utf8.RuneCountInString(password)

	var hasDigit, hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	score := 0
	if length >= 8 {
		score++
	}
	if length >= 12 {
		score++
	}
	if hasDigit {
		score++
	}
	if hasUpper {
		score++
	}
	if hasLower {
		score++
	}

	strength := StrengthWeak
	switch {
	case score >= 4:
		strength = StrengthStrong
	case score >= 3:
		strength = StrengthMedium
	}

	result := StrengthResult{IsValid: true, Strength: strength}
	switch {
	case length < 8:
		result.IsValid = false
		result.Message = "Password must be at least 8 characters long"
	case !hasDigit:
		result.IsValid = false
		result.Message = "Password must contain at least one number"
	}
	return result
}
