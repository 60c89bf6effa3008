package service

import (
	"context"
	"time"

	"github.com/allisson/nodeauth/internal/metrics"
)

// nonceCacheWithMetrics decorates NonceCache with metrics instrumentation.
type nonceCacheWithMetrics struct {
	next    NonceCache
	metrics metrics.BusinessMetrics
}

// NewNonceCacheWithMetrics wraps a NonceCache with metrics recording.
// Status is "fresh" for accepted nonces and "rejected" otherwise.
func NewNonceCacheWithMetrics(cache NonceCache, m metrics.BusinessMetrics) NonceCache {
	return &nonceCacheWithMetrics{
		next:    cache,
		metrics: m,
	}
}

// CheckNonce records metrics for global nonce checks.
func (n *nonceCacheWithMetrics) CheckNonce(ctx context.Context, timestamp int64, nonce string) bool {
	start := time.Now()
	fresh := n.next.CheckNonce(ctx, timestamp, nonce)
	n.record(ctx, "nonce_check", start, fresh)
	return fresh
}

// CheckIdentifiedNonce records metrics for per-identifier nonce checks.
func (n *nonceCacheWithMetrics) CheckIdentifiedNonce(
	ctx context.Context,
	id string,
	timestamp int64,
	nonce string,
) bool {
	start := time.Now()
	fresh := n.next.CheckIdentifiedNonce(ctx, id, timestamp, nonce)
	n.record(ctx, "identified_nonce_check", start, fresh)
	return fresh
}

func (n *nonceCacheWithMetrics) record(ctx context.Context, operation string, start time.Time, fresh bool) {
	status := metrics.StatusFresh
	if !fresh {
		status = metrics.StatusRejected
	}
	metrics.Observe(ctx, n.metrics, metrics.DomainNonce, operation, start, status)
}
