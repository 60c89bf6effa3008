package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/nodeauth/internal/metrics"
	"github.com/allisson/nodeauth/internal/nonce/service/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestNonceCacheWithMetrics(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		fresh     bool
		status    string
		operation string
		call      func(NonceCache) bool
		setup     func(*mocks.MockNonceCache, bool)
	}{
		{
			name:      "CheckNonce_Fresh",
			fresh:     true,
			status:    "fresh",
			operation: "nonce_check",
			call:      func(c NonceCache) bool { return c.CheckNonce(ctx, 10, "n") },
			setup: func(m *mocks.MockNonceCache, fresh bool) {
				m.On("CheckNonce", ctx, int64(10), "n").Return(fresh).Once()
			},
		},
		{
			name:      "CheckNonce_Rejected",
			fresh:     false,
			status:    "rejected",
			operation: "nonce_check",
			call:      func(c NonceCache) bool { return c.CheckNonce(ctx, 10, "n") },
			setup: func(m *mocks.MockNonceCache, fresh bool) {
				m.On("CheckNonce", ctx, int64(10), "n").Return(fresh).Once()
			},
		},
		{
			name:      "CheckIdentifiedNonce_Rejected",
			fresh:     false,
			status:    "rejected",
			operation: "identified_nonce_check",
			call:      func(c NonceCache) bool { return c.CheckIdentifiedNonce(ctx, "id", 10, "n") },
			setup: func(m *mocks.MockNonceCache, fresh bool) {
				m.On("CheckIdentifiedNonce", ctx, "id", int64(10), "n").Return(fresh).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &mocks.MockNonceCache{}
			tt.setup(next, tt.fresh)
			m := &mockBusinessMetrics{}
			m.On("RecordOperation", ctx, "nonce", tt.operation, tt.status).Return().Once()
			m.On("RecordDuration", ctx, "nonce", tt.operation, mock.AnythingOfType("time.Duration"), tt.status).
				Return().
				Once()

			decorated := NewNonceCacheWithMetrics(next, m)

			assert.Equal(t, tt.fresh, tt.call(decorated))
			next.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}
