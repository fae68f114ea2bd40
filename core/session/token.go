package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// tokenSize is the number of random bytes in a replay token (256 bits).
const tokenSize = 32

// NewID returns a new random session identifier (UUID v4).
func NewID() string {
	return uuid.NewString()
}

// NewToken creates a cryptographically secure random token encoded as
// base64 URL-safe string without padding.
func NewToken() (string, error) {
	b := make([]byte, tokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
