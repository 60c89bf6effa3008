package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/nodeauth/internal/errors"
	"github.com/allisson/nodeauth/internal/httputil"
)

// limiterKey identifies a user. Uids are only unique within one node.
type limiterKey struct {
	node string
	uid  int64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

type limiterStore struct {
	entries sync.Map // limiterKey -> *limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{limit: rate.Limit(rps), burst: burst, now: time.Now}
}

// RateLimitMiddleware throttles each authenticated (node, uid) pair with a
// token bucket and answers 429 with Retry-After once it is empty. It must run
// after AuthenticationMiddleware. Idle buckets are swept until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	go store.sweep(ctx, 5*time.Minute, time.Hour)

	return func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok || identity == nil {
			logger.Error("rate limit middleware: no authenticated identity in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := store.limiter(limiterKey{node: identity.Node, uid: identity.UID})
		reservation := limiter.ReserveN(store.now(), 1)
		if delay := reservation.DelayFrom(store.now()); delay > 0 {
			reservation.Cancel()
			retryAfter := int(math.Ceil(delay.Seconds()))

			logger.Debug("rate limit exceeded",
				slog.String("node", identity.Node),
				slog.Int64("uid", identity.UID),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}

func (s *limiterStore) limiter(key limiterKey) *rate.Limiter {
	now := s.now().UnixNano()
	if val, ok := s.entries.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
	entry.lastSeen.Store(now)
	actual, _ := s.entries.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

func (s *limiterStore) sweep(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeIdle(s.now().Add(-maxIdle))
		}
	}
}

// removeIdle drops buckets not used since threshold.
func (s *limiterStore) removeIdle(threshold time.Time) {
	cutoff := threshold.UnixNano()
	s.entries.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff {
			s.entries.Delete(key)
		}
		return true
	})
}
