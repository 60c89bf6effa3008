package service

import (
	"context"
	"log/slog"
	"time"

	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
)

const (
	// DefaultWindow is the accepted distance between a request timestamp and now.
	DefaultWindow = 60 * time.Second

	// DefaultIDTTL is how long a per-identifier skew record is kept.
	DefaultIDTTL = time.Hour
)

// CacheBackedConfig parameterizes a CacheBackedNonceCache. Zero values select
// the defaults; TTL defaults to twice the window.
type CacheBackedConfig struct {
	Window time.Duration
	TTL    time.Duration
	IDTTL  time.Duration
}

// CacheBackedNonceCache enforces at-most-once use of a nonce within the window,
// using the atomic Add of a shared cache so that several processes agree.
//
// Every cache failure rejects the nonce.
type CacheBackedNonceCache struct {
	cache  Cache
	window int64
	ttl    time.Duration
	idTTL  time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCacheBackedNonceCache creates a CacheBackedNonceCache over cache.
func NewCacheBackedNonceCache(cache Cache, cfg CacheBackedConfig, logger *slog.Logger) *CacheBackedNonceCache {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * cfg.Window
	}
	if cfg.IDTTL <= 0 {
		cfg.IDTTL = DefaultIDTTL
	}
	// cache TTLs have one-second resolution, round the window up
	window := int64((cfg.Window + time.Second - 1) / time.Second)

	return &CacheBackedNonceCache{
		cache:  cache,
		window: window,
		ttl:    cfg.TTL,
		idTTL:  cfg.IDTTL,
		now:    time.Now,
		logger: logger,
	}
}

// CheckNonce returns true iff timestamp is within the window and the nonce has
// not been seen with that timestamp.
func (c *CacheBackedNonceCache) CheckNonce(ctx context.Context, timestamp int64, nonce string) bool {
	now := c.now().Unix()
	if !c.inWindow(now, timestamp) {
		c.logger.DebugContext(ctx, "nonce timestamp outside window",
			slog.Int64("timestamp", timestamp),
			slog.Int64("now", now),
		)
		return false
	}

	added, err := c.cache.Add(ctx, nonceDomain.NonceKey(timestamp, nonce), nonceDomain.SeenValue, c.ttl)
	if err != nil {
		c.logger.WarnContext(ctx, "nonce cache add failed", slog.Any("error", err))
		return false
	}
	return added
}

// CheckIdentifiedNonce returns true iff the nonce has not been seen for id and
// timestamp, corrected by the skew recorded on the first check for id, is
// within the window.
func (c *CacheBackedNonceCache) CheckIdentifiedNonce(
	ctx context.Context,
	id string,
	timestamp int64,
	nonce string,
) bool {
	now := c.now().Unix()
	skewKey := nonceDomain.SkewKey(id)
	nonceKey := nonceDomain.IdentifiedNonceKey(id, timestamp, nonce)

	values, err := c.cache.GetMulti(ctx, []string{skewKey, nonceKey})
	if err != nil {
		c.logger.WarnContext(ctx, "nonce cache lookup failed", slog.Any("error", err))
		return false
	}
	if _, seen := values[nonceKey]; seen {
		return false
	}

	var skew int64
	if raw, ok := values[skewKey]; ok {
		skew, err = nonceDomain.DecodeSkew(raw)
		if err != nil {
			c.logger.WarnContext(ctx, "nonce cache returned corrupt skew", slog.Any("error", err))
			return false
		}
	} else {
		skew = now - timestamp
		// a concurrent first request may store its own skew; either value is a
		// fair estimate, so losing the add is not an error
		if _, err := c.cache.Add(ctx, skewKey, nonceDomain.EncodeSkew(skew), c.idTTL); err != nil {
			c.logger.WarnContext(ctx, "nonce cache skew add failed", slog.Any("error", err))
			return false
		}
	}

	if !c.inWindow(now, timestamp+skew) {
		c.logger.DebugContext(ctx, "skew adjusted timestamp outside window",
			slog.Int64("timestamp", timestamp),
			slog.Int64("skew", skew),
			slog.Int64("now", now),
		)
		return false
	}

	added, err := c.cache.Add(ctx, nonceKey, nonceDomain.SeenValue, c.ttl)
	if err != nil {
		c.logger.WarnContext(ctx, "nonce cache add failed", slog.Any("error", err))
		return false
	}
	return added
}

func (c *CacheBackedNonceCache) inWindow(now, timestamp int64) bool {
	return timestamp >= now-c.window && timestamp <= now+c.window
}
