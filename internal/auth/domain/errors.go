package domain

import (
	"github.com/allisson/nodeauth/internal/errors"
)

// Authentication errors. Both surface to clients as the same 401; logs tell
// them apart.
var (
	// ErrInvalidCredentials indicates the request could not be tied to a valid
	// token for the target node: bad header, unknown node, no secret verifies
	// the token, node mismatch or wrong request MAC.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrReplayedOrStaleRequest indicates valid credentials whose nonce was
	// already used or whose timestamp is outside the window.
	ErrReplayedOrStaleRequest = errors.Wrap(errors.ErrUnauthorized, "replayed or stale request")
)
