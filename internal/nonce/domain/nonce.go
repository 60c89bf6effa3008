package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
)

// SeenValue marks a nonce as used.
var SeenValue = []byte("1")

// BackendKind selects the nonce cache implementation.
type BackendKind string

const (
	BackendPermissive BackendKind = "permissive"
	BackendMemcached  BackendKind = "memcached"
	BackendMemory     BackendKind = "memory"
	BackendPostgreSQL BackendKind = "postgres"
	BackendMySQL      BackendKind = "mysql"
)

// ParseBackendKind converts a configuration string into a BackendKind.
func ParseBackendKind(kind string) (BackendKind, error) {
	switch BackendKind(kind) {
	case BackendPermissive, BackendMemcached, BackendMemory, BackendPostgreSQL, BackendMySQL:
		return BackendKind(kind), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNonceBackend, kind)
	}
}

// HashKey maps arbitrary key material to a fixed-length cache key that is safe
// for memcached (no spaces or control characters, well under 250 bytes).
func HashKey(material string) string {
	sum := sha256.Sum256([]byte(material))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NonceKey is the key of a single-identifier nonce record.
func NonceKey(timestamp int64, nonce string) string {
	return HashKey(fmt.Sprintf("%d:%s", timestamp, nonce))
}

// IdentifiedNonceKey is the key of a nonce record scoped to id.
func IdentifiedNonceKey(id string, timestamp int64, nonce string) string {
	return HashKey(fmt.Sprintf("%s:nonce:%d:%s", id, timestamp, nonce))
}

// SkewKey is the key of the clock-skew record of id.
func SkewKey(id string) string {
	return HashKey(id + ":skew")
}

// EncodeSkew serializes a skew in seconds.
func EncodeSkew(skew int64) []byte {
	return []byte(strconv.FormatInt(skew, 10))
}

// DecodeSkew parses a stored skew record.
func DecodeSkew(value []byte) (int64, error) {
	skew, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrCorruptSkew, value)
	}
	return skew, nil
}
