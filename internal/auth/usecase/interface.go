// Package usecase implements authentication of node-token signed requests.
package usecase

import (
	"context"
	"net/http"

	authDomain "github.com/allisson/nodeauth/internal/auth/domain"
	tokenDomain "github.com/allisson/nodeauth/internal/token/domain"
)

// Authenticator verifies signed requests and issues node tokens.
type Authenticator interface {
	// Authenticate verifies the Authorization header of r against the secrets
	// of the node r targets. Every failure wraps errors.ErrUnauthorized.
	Authenticate(ctx context.Context, r *http.Request) (*authDomain.Identity, error)

	// IssueToken issues a token for uid on node, signed with the newest secret
	// of the node.
	IssueToken(ctx context.Context, node string, uid int64) (*tokenDomain.Token, error)
}

// TokenCodec encodes and decodes node tokens with a given secret.
type TokenCodec interface {
	Encode(secret, node string, uid int64) (*tokenDomain.Token, error)
	Decode(secret, value string) (*tokenDomain.Token, error)
}
