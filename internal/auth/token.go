package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Session token format: sess_{secret}, secret is 32 random bytes hex encoded.
const (
	SessionTokenPrefix    = "sess_"
	SessionTokenSecretLen = 64
)

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")

	tokenFormatRegex = regexp.MustCompile(`^sess_[a-f0-9]{64}$`)
)

// GenerateSessionToken returns a new opaque session token.
func GenerateSessionToken() (string, error) {
	secret := make([]byte, SessionTokenSecretLen/2)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return SessionTokenPrefix + hex.EncodeToString(secret), nil
}

// ValidateTokenFormat reports whether token looks like a session token.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// HashToken derives the storage key of a session token.
// Tokens carry 256 bits of entropy, so a plain SHA-256 is sufficient.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
