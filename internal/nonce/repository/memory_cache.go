package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bluele/gcache"
)

// DefaultMemoryCacheSize bounds the in-process cache.
const DefaultMemoryCacheSize = 100000

// MemoryCache implements the nonce cache protocol in process with an LRU of
// expiring entries. It only protects a single process; use memcached or SQL
// when more than one instance serves requests.
//
// Eviction under pressure forgets nonces early, so size it above the number
// of requests expected per TTL.
type MemoryCache struct {
	mu    sync.Mutex
	cache gcache.Cache
}

// NewMemoryCache creates a MemoryCache holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{cache: gcache.New(size).LRU().Build()}
}

// Get returns the value stored at key.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(key)
}

// GetMulti returns the present subset of keys.
func (m *MemoryCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok, err := m.get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			found[key] = value
		}
	}
	return found, nil
}

// Add stores value at key unless it exists.
func (m *MemoryCache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok, err := m.get(key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := m.cache.SetWithExpire(key, append([]byte(nil), value...), ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.cache.Len(true)
}

func (m *MemoryCache) get(key string) ([]byte, bool, error) {
	value, err := m.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value.([]byte), true, nil
}
