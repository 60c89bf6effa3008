// Package mocks provides mock implementations for testing nonce caches.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of service.Cache for testing.
type MockCache struct {
	mock.Mock
}

// Get mocks the Get method of Cache.
func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

// GetMulti mocks the GetMulti method of Cache.
func (m *MockCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]byte), args.Error(1)
}

// Add mocks the Add method of Cache.
func (m *MockCache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

// MockNonceCache is a mock implementation of service.NonceCache for testing.
type MockNonceCache struct {
	mock.Mock
}

// CheckNonce mocks the CheckNonce method of NonceCache.
func (m *MockNonceCache) CheckNonce(ctx context.Context, timestamp int64, nonce string) bool {
	args := m.Called(ctx, timestamp, nonce)
	return args.Bool(0)
}

// CheckIdentifiedNonce mocks the CheckIdentifiedNonce method of NonceCache.
func (m *MockNonceCache) CheckIdentifiedNonce(ctx context.Context, id string, timestamp int64, nonce string) bool {
	args := m.Called(ctx, id, timestamp, nonce)
	return args.Bool(0)
}

// MockExpiredEntryPurger is a mock implementation of ExpiredEntryPurger for testing.
type MockExpiredEntryPurger struct {
	mock.Mock
}

// DeleteExpired mocks the DeleteExpired method of ExpiredEntryPurger.
func (m *MockExpiredEntryPurger) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
