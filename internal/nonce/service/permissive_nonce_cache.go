package service

import (
	"context"
	"log/slog"
	"time"
)

// DefaultLogWindow is the skew above which PermissiveNonceCache logs.
const DefaultLogWindow = 60 * time.Second

// PermissiveNonceCache accepts every nonce. It only logs timestamps that are far
// outside the log window, which helps size a strict window before enabling one.
type PermissiveNonceCache struct {
	logWindow int64
	now       func() time.Time
	logger    *slog.Logger
}

// NewPermissiveNonceCache creates a PermissiveNonceCache. A non-positive
// logWindow selects DefaultLogWindow.
func NewPermissiveNonceCache(logWindow time.Duration, logger *slog.Logger) *PermissiveNonceCache {
	if logWindow <= 0 {
		logWindow = DefaultLogWindow
	}
	return &PermissiveNonceCache{
		logWindow: int64(logWindow / time.Second),
		now:       time.Now,
		logger:    logger,
	}
}

// CheckNonce always returns true.
func (p *PermissiveNonceCache) CheckNonce(ctx context.Context, timestamp int64, nonce string) bool {
	p.logSkew(ctx, timestamp)
	return true
}

// CheckIdentifiedNonce always returns true.
func (p *PermissiveNonceCache) CheckIdentifiedNonce(
	ctx context.Context,
	id string,
	timestamp int64,
	nonce string,
) bool {
	p.logSkew(ctx, timestamp)
	return true
}

func (p *PermissiveNonceCache) logSkew(ctx context.Context, timestamp int64) {
	skew := p.now().Unix() - timestamp
	if skew > p.logWindow || -skew > p.logWindow {
		p.logger.WarnContext(ctx, "large timestamp skew detected", slog.Int64("skew", skew))
	}
}
