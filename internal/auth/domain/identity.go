// Package domain defines the authenticated identity of a request and the rules
// for naming the node a request targets.
package domain

import (
	"time"
)

// Identity is the result of a successful authentication.
type Identity struct {
	UID     int64
	Node    string
	TokenID string
	// Key is the request-signing key of the token.
	Key       string
	Scheme    string
	ExpiresAt time.Time
}
