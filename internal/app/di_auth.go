package app

import (
	"fmt"

	authDomain "github.com/allisson/nodeauth/internal/auth/domain"
	authUseCase "github.com/allisson/nodeauth/internal/auth/usecase"
	tokenService "github.com/allisson/nodeauth/internal/token/service"
)

// TokenCodec returns the codec issuing and reading node tokens.
func (c *Container) TokenCodec() *tokenService.Codec {
	c.tokenCodecInit.Do(func() {
		c.tokenCodec = tokenService.NewCodec(c.config.TokenDuration)
	})
	return c.tokenCodec
}

// Authenticator returns the token authenticator, instrumented with business metrics.
func (c *Container) Authenticator() (authUseCase.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		c.authenticator, err = c.initAuthenticator()
		if err != nil {
			c.initErrors["authenticator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authenticator"]; exists {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// initAuthenticator creates the authenticator with all its dependencies.
func (c *Container) initAuthenticator() (authUseCase.Authenticator, error) {
	store, err := c.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store for authenticator: %w", err)
	}

	nonceCache, err := c.NonceCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce cache for authenticator: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for authenticator: %w", err)
	}

	authenticator := authUseCase.NewAuthenticator(
		store,
		c.TokenCodec(),
		nonceCache,
		authDomain.NodeOptions{
			TrustForwardedHeaders: c.config.AuthTrustForwardedHeaders,
			PathPrefix:            c.config.AuthNodePathPrefix,
		},
		c.Logger(),
	)

	return authUseCase.NewAuthenticatorWithMetrics(authenticator, businessMetrics), nil
}
