package usecase

import (
	"context"
	"net/http"
	"time"

	authDomain "github.com/allisson/nodeauth/internal/auth/domain"
	apperrors "github.com/allisson/nodeauth/internal/errors"
	"github.com/allisson/nodeauth/internal/metrics"
	tokenDomain "github.com/allisson/nodeauth/internal/token/domain"
)

// authenticatorWithMetrics decorates Authenticator with metrics instrumentation.
type authenticatorWithMetrics struct {
	next    Authenticator
	metrics metrics.BusinessMetrics
}

// NewAuthenticatorWithMetrics wraps an Authenticator with metrics recording.
func NewAuthenticatorWithMetrics(authenticator Authenticator, m metrics.BusinessMetrics) Authenticator {
	return &authenticatorWithMetrics{
		next:    authenticator,
		metrics: m,
	}
}

// Authenticate records metrics for request authentication. Credential and
// replay failures count as rejected.
func (a *authenticatorWithMetrics) Authenticate(ctx context.Context, r *http.Request) (*authDomain.Identity, error) {
	start := time.Now()
	identity, err := a.next.Authenticate(ctx, r)
	metrics.Observe(ctx, a.metrics, metrics.DomainAuth, "authenticate", start, outcome(err))
	return identity, err
}

// IssueToken records metrics for token issuance.
func (a *authenticatorWithMetrics) IssueToken(ctx context.Context, node string, uid int64) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := a.next.IssueToken(ctx, node, uid)
	metrics.Observe(ctx, a.metrics, metrics.DomainAuth, "token_issue", start, outcome(err))
	return token, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return metrics.StatusRejected
	default:
		return metrics.StatusError
	}
}
