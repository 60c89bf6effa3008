package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

// DefaultSecretSize is the number of random bytes used by "secrets new".
const DefaultSecretSize = 32

// DefaultNodeSecretSize is the length, in hex characters, of secrets added to a file store.
const DefaultNodeSecretSize = 256

// GenerateHexSecret returns the hex encoding of size random bytes.
func GenerateHexSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("%w: %d", secretsDomain.ErrInvalidSecretSize, size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
