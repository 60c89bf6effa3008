// Package mocks provides mock implementations for testing authentication consumers.
package mocks

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/nodeauth/internal/auth/domain"
	tokenDomain "github.com/allisson/nodeauth/internal/token/domain"
)

// MockAuthenticator is a mock implementation of Authenticator for testing.
type MockAuthenticator struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of Authenticator.
func (m *MockAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*authDomain.Identity, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

// IssueToken mocks the IssueToken method of Authenticator.
func (m *MockAuthenticator) IssueToken(ctx context.Context, node string, uid int64) (*tokenDomain.Token, error) {
	args := m.Called(ctx, node, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}
