// Package domain defines node tokens: the signed credential a client presents
// in the id field of a Hawk or MAC Authorization header.
package domain

import (
	"time"

	"github.com/allisson/nodeauth/internal/errors"
)

// HKDF info namespaces for keys derived from a node secret.
const (
	HKDFInfoSigning = "services.mozilla.com/tokenlib/v1/signing"
	HKDFInfoDerive  = "services.mozilla.com/tokenlib/v1/derive/"
)

// DefaultDuration is the lifetime of an issued token.
const DefaultDuration = 5 * time.Minute

// Token is a decoded or freshly issued node token.
type Token struct {
	// Value is the encoded token, used as the id of signed requests.
	Value string
	// ID is the unique token id (jti claim).
	ID   string
	UID  int64
	Node string
	// Key is the request-signing key shared with the holder of the token.
	Key       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token error definitions.
var (
	// ErrInvalidToken indicates the token is malformed or not signed by the given secret.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrExpiredToken indicates the token signature is valid but its lifetime has ended.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "expired token")
)
