package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	authDomain "github.com/allisson/nodeauth/internal/auth/domain"
	nonceService "github.com/allisson/nodeauth/internal/nonce/service"
	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
	"github.com/allisson/nodeauth/internal/signature"
	tokenDomain "github.com/allisson/nodeauth/internal/token/domain"
)

type tokenAuthenticator struct {
	store    secretsService.SecretStore
	codec    TokenCodec
	nonces   nonceService.NonceCache
	nodeOpts authDomain.NodeOptions
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(
	store secretsService.SecretStore,
	codec TokenCodec,
	nonces nonceService.NonceCache,
	nodeOpts authDomain.NodeOptions,
	logger *slog.Logger,
) Authenticator {
	return &tokenAuthenticator{
		store:    store,
		codec:    codec,
		nonces:   nonces,
		nodeOpts: nodeOpts,
		logger:   logger,
	}
}

// Authenticate runs the checks in order: header, node secrets, token, node
// claim, request MAC and finally the nonce, so that only requests with valid
// credentials consume nonce cache entries.
func (a *tokenAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*authDomain.Identity, error) {
	creds, err := signature.ParseAuthorization(r.Header.Get("Authorization"))
	if err != nil {
		a.logger.DebugContext(ctx, "authentication failed: bad authorization header", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidCredentials, err)
	}

	node := authDomain.CanonicalNode(r, a.nodeOpts)

	secrets := a.store.Get(node)
	if len(secrets) == 0 {
		a.logger.DebugContext(ctx, "authentication failed: no secrets for node", slog.String("node", node))
		return nil, fmt.Errorf("%w: unknown node", authDomain.ErrInvalidCredentials)
	}

	token, err := a.decode(secrets, creds.ID)
	if err != nil {
		a.logger.DebugContext(ctx, "authentication failed: token rejected",
			slog.String("node", node),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidCredentials, err)
	}

	if token.Node != node {
		a.logger.DebugContext(ctx, "authentication failed: token issued for another node",
			slog.String("node", node),
			slog.String("token_node", token.Node),
		)
		return nil, fmt.Errorf("%w: node mismatch", authDomain.ErrInvalidCredentials)
	}

	origin := authDomain.RequestOrigin(r, a.nodeOpts)
	endpoint := signature.Endpoint{Host: origin.Host, Port: origin.Port}
	if !signature.Verify(r, creds, token.Key, endpoint) {
		a.logger.DebugContext(ctx, "authentication failed: request signature mismatch", slog.String("node", node))
		return nil, fmt.Errorf("%w: signature mismatch", authDomain.ErrInvalidCredentials)
	}

	var fresh bool
	if creds.Scheme == signature.SchemeMAC {
		fresh = a.nonces.CheckIdentifiedNonce(ctx, token.ID, creds.Timestamp, creds.Nonce)
	} else {
		fresh = a.nonces.CheckNonce(ctx, creds.Timestamp, creds.Nonce)
	}
	if !fresh {
		a.logger.DebugContext(ctx, "authentication failed: replayed or stale nonce",
			slog.String("node", node),
			slog.Int64("timestamp", creds.Timestamp),
		)
		return nil, authDomain.ErrReplayedOrStaleRequest
	}

	return &authDomain.Identity{
		UID:       token.UID,
		Node:      node,
		TokenID:   token.ID,
		Key:       token.Key,
		Scheme:    string(creds.Scheme),
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// decode tries the secrets newest first; the newest is the likeliest signer.
func (a *tokenAuthenticator) decode(secrets []string, value string) (*tokenDomain.Token, error) {
	var lastErr error
	for i := len(secrets) - 1; i >= 0; i-- {
		token, err := a.codec.Decode(secrets[i], value)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// IssueToken signs with the last secret of node.
func (a *tokenAuthenticator) IssueToken(ctx context.Context, node string, uid int64) (*tokenDomain.Token, error) {
	secrets := a.store.Get(node)
	if len(secrets) == 0 {
		return nil, fmt.Errorf("%w: no secrets for node %q", authDomain.ErrInvalidCredentials, node)
	}
	return a.codec.Encode(secrets[len(secrets)-1], node, uid)
}
