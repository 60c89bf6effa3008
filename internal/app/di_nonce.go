package app

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/allisson/nodeauth/internal/errors"
	"github.com/allisson/nodeauth/internal/http"
	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
	nonceRepository "github.com/allisson/nodeauth/internal/nonce/repository"
	nonceService "github.com/allisson/nodeauth/internal/nonce/service"
)

// NonceBackend returns the key-value cache behind the nonce cache, or nil for
// the permissive backend, which stores nothing.
func (c *Container) NonceBackend() (nonceService.Cache, error) {
	var err error
	c.nonceBackendInit.Do(func() {
		c.nonceBackend, err = c.initNonceBackend()
		if err != nil {
			c.initErrors["nonceBackend"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["nonceBackend"]; exists {
		return nil, storedErr
	}
	return c.nonceBackend, nil
}

// NonceCache returns the nonce cache used by the authenticator.
func (c *Container) NonceCache() (nonceService.NonceCache, error) {
	var err error
	c.nonceCacheInit.Do(func() {
		c.nonceCache, err = c.initNonceCache()
		if err != nil {
			c.initErrors["nonceCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["nonceCache"]; exists {
		return nil, storedErr
	}
	return c.nonceCache, nil
}

// ExpiredNoncePurger returns the purger of the configured SQL nonce backend.
// Other backends expire entries on their own and report ok=false.
func (c *Container) ExpiredNoncePurger() (purger nonceService.ExpiredEntryPurger, ok bool, err error) {
	backend, err := c.NonceBackend()
	if err != nil {
		return nil, false, err
	}
	purger, ok = backend.(nonceService.ExpiredEntryPurger)
	return purger, ok, nil
}

func (c *Container) nonceBackendKind() (nonceDomain.BackendKind, error) {
	return nonceDomain.ParseBackendKind(c.config.NonceCacheBackend)
}

// initNonceBackend creates the key-value cache selected by configuration.
func (c *Container) initNonceBackend() (nonceService.Cache, error) {
	kind, err := c.nonceBackendKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case nonceDomain.BackendPermissive:
		return nil, nil
	case nonceDomain.BackendMemory:
		return nonceRepository.NewMemoryCache(c.config.MemoryCacheSize), nil
	case nonceDomain.BackendMemcached:
		cache, err := nonceRepository.NewMemcachedCache(nonceRepository.MemcachedConfig{
			Servers:      c.config.MemcachedServers,
			KeyPrefix:    c.config.MemcachedKeyPrefix,
			Timeout:      c.config.MemcachedTimeout,
			MaxIdleConns: c.config.MemcachedMaxIdleConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memcached nonce backend: %w", err)
		}
		c.memcachedCache = cache
		return cache, nil
	case nonceDomain.BackendPostgreSQL, nonceDomain.BackendMySQL:
		if string(kind) != c.config.DBDriver {
			return nil, apperrors.Wrapf(apperrors.ErrConfiguration,
				"nonce backend %q requires DB_DRIVER=%s", kind, kind)
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for nonce backend: %w", err)
		}
		if kind == nonceDomain.BackendMySQL {
			return nonceRepository.NewMySQLCache(db), nil
		}
		return nonceRepository.NewPostgreSQLCache(db), nil
	}
	return nil, fmt.Errorf("%w: %q", nonceDomain.ErrUnknownNonceBackend, kind)
}

// initNonceCache wraps the backend with the replay-window logic and metrics.
func (c *Container) initNonceCache() (nonceService.NonceCache, error) {
	logger := c.Logger()

	backend, err := c.NonceBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce backend: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for nonce cache: %w", err)
	}

	var cache nonceService.NonceCache
	if backend == nil {
		logger.Warn("using permissive nonce cache, replayed requests will not be rejected")
		cache = nonceService.NewPermissiveNonceCache(c.config.NonceLogWindow, logger)
	} else {
		logger.Info("using cache-backed nonce cache",
			slog.String("backend", c.config.NonceCacheBackend),
			slog.Duration("window", c.config.NonceWindow))
		cache = nonceService.NewCacheBackedNonceCache(backend, nonceService.CacheBackedConfig{
			Window: c.config.NonceWindow,
			TTL:    c.config.NonceTTL,
			IDTTL:  c.config.IDTTL,
		}, logger)
	}

	return nonceService.NewNonceCacheWithMetrics(cache, businessMetrics), nil
}

// readinessChecks reports the nonce backend the server depends on.
func (c *Container) readinessChecks() ([]http.ReadinessCheck, error) {
	backend, err := c.NonceBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce backend for readiness checks: %w", err)
	}

	switch b := backend.(type) {
	case *nonceRepository.MemcachedCache:
		return []http.ReadinessCheck{{
			Name: "nonce_cache",
			Check: func(ctx context.Context) error {
				return b.Ping()
			},
		}}, nil
	case *nonceRepository.PostgreSQLCache, *nonceRepository.MySQLCache:
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return []http.ReadinessCheck{{Name: "database", Check: db.PingContext}}, nil
	}
	return nil, nil
}
