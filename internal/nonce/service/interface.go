// Package service implements nonce freshness checks used to reject replayed
// requests.
package service

import (
	"context"
	"time"
)

// NonceCache decides whether a (timestamp, nonce) pair is fresh and, as a side
// effect, marks it seen for the rest of the window.
type NonceCache interface {
	// CheckNonce checks a nonce in the global scope.
	CheckNonce(ctx context.Context, timestamp int64, nonce string) bool

	// CheckIdentifiedNonce checks a nonce scoped to id, correcting timestamp by
	// the clock skew first observed for id.
	CheckIdentifiedNonce(ctx context.Context, id string, timestamp int64, nonce string) bool
}

// Cache is the key-value store a CacheBackedNonceCache relies on. Add must be an
// atomic create-if-absent: of concurrent Adds of one key exactly one returns true.
type Cache interface {
	// Get returns the value stored at key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMulti returns the subset of keys that are present.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Add stores value at key unless the key already exists.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// ExpiredEntryPurger deletes entries that expired before a point in time. Only
// the SQL caches need it; memcached and the in-process LRU expire on their own.
type ExpiredEntryPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
