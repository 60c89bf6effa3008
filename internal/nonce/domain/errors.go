// Package domain defines the nonce replay cache model: cache keys, backend kinds
// and errors.
package domain

import (
	"github.com/allisson/nodeauth/internal/errors"
)

// Nonce cache error definitions.
var (
	// ErrCacheBackend wraps every failure of the underlying cache. Checks that hit
	// it are rejected; the error itself is only logged.
	ErrCacheBackend = errors.Wrap(errors.ErrUnavailable, "nonce cache backend failure")

	// ErrCorruptSkew indicates a stored clock-skew record could not be parsed.
	ErrCorruptSkew = errors.New("corrupt clock skew record")

	// ErrUnknownNonceBackend indicates the configured cache backend is not supported.
	ErrUnknownNonceBackend = errors.Wrap(errors.ErrConfiguration, "unknown nonce cache backend")
)
