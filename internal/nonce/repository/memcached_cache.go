// Package repository implements the key-value caches backing the nonce replay
// cache: memcached for multi-process deployments, PostgreSQL and MySQL tables
// for deployments that already run a database, and an in-process LRU.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
)

// DefaultMemcachedKeyPrefix namespaces nonce keys in a shared memcached.
const DefaultMemcachedKeyPrefix = "noncecache:"

// MemcachedConfig holds memcached client settings.
type MemcachedConfig struct {
	Servers      []string
	KeyPrefix    string
	Timeout      time.Duration
	MaxIdleConns int
}

// MemcachedCache implements the nonce cache protocol on memcached, whose "add"
// command is the atomic create-if-absent the protocol requires.
type MemcachedCache struct {
	client *memcache.Client
	prefix string
}

// NewMemcachedCache creates a MemcachedCache. The client connects lazily.
func NewMemcachedCache(cfg MemcachedConfig) (*MemcachedCache, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("%w: no memcached servers configured", nonceDomain.ErrCacheBackend)
	}
	client := memcache.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		client.MaxIdleConns = cfg.MaxIdleConns
	}
	return &MemcachedCache{client: client, prefix: cfg.KeyPrefix}, nil
}

// Get returns the value stored at key.
func (m *MemcachedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", nonceDomain.ErrCacheBackend, err)
	}
	item, err := m.client.Get(m.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: memcached get: %w", nonceDomain.ErrCacheBackend, err)
	}
	return item.Value, true, nil
}

// GetMulti returns the present subset of keys in one round trip per server.
func (m *MemcachedCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", nonceDomain.ErrCacheBackend, err)
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, m.prefix+key)
	}

	items, err := m.client.GetMulti(prefixed)
	if err != nil {
		return nil, fmt.Errorf("%w: memcached get multi: %w", nonceDomain.ErrCacheBackend, err)
	}

	found := make(map[string][]byte, len(items))
	for key, item := range items {
		found[strings.TrimPrefix(key, m.prefix)] = item.Value
	}
	return found, nil
}

// Add stores value at key unless it exists. The TTL is rounded up to whole seconds.
func (m *MemcachedCache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", nonceDomain.ErrCacheBackend, err)
	}
	err := m.client.Add(&memcache.Item{
		Key:        m.prefix + key,
		Value:      value,
		Expiration: expirationSeconds(ttl),
	})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: memcached add: %w", nonceDomain.ErrCacheBackend, err)
	}
	return true, nil
}

// Ping checks that every server answers.
func (m *MemcachedCache) Ping() error {
	if err := m.client.Ping(); err != nil {
		return fmt.Errorf("%w: memcached ping: %w", nonceDomain.ErrCacheBackend, err)
	}
	return nil
}

// Close releases idle connections.
func (m *MemcachedCache) Close() error {
	return m.client.Close()
}

// expirationSeconds converts ttl to memcached relative expiry. Values above 30
// days would be read as absolute unix times, so they are capped.
func expirationSeconds(ttl time.Duration) int32 {
	const maxRelative = 30 * 24 * time.Hour
	if ttl > maxRelative {
		ttl = maxRelative
	}
	seconds := (ttl + time.Second - 1) / time.Second
	if seconds < 1 {
		seconds = 1
	}
	return int32(seconds)
}
