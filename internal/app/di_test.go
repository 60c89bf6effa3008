package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nodeauth/internal/config"
	apperrors "github.com/allisson/nodeauth/internal/errors"
	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
	nonceRepository "github.com/allisson/nodeauth/internal/nonce/repository"
	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:                "error",
		ServerHost:              "localhost",
		ServerPort:              8080,
		DBDriver:                "postgres",
		Secret:                  "0001aaa 0002bbb",
		TokenDuration:           5 * time.Minute,
		NonceCacheBackend:       "memory",
		NonceWindow:             time.Minute,
		IDTTL:                   time.Hour,
		NonceLogWindow:          time.Minute,
		MemoryCacheSize:         1000,
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 10,
		RateLimitBurst:          20,
		MetricsNamespace:        "test_app",
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := testConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

// TestContainerLogger verifies that the logger can be retrieved from the container.
func TestContainerLogger(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "debug"})

	logger := container.Logger()
	require.NotNil(t, logger)

	// Calling Logger() again should return the same instance (singleton)
	assert.Same(t, logger, container.Logger())
}

// TestContainerLoggerDefaultLevel verifies that logger defaults to info level.
func TestContainerLoggerDefaultLevel(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "invalid"})

	logger := container.Logger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

// TestContainerInitializationErrors verifies that initialization errors are stored.
func TestContainerInitializationErrors(t *testing.T) {
	cfg := &config.Config{
		DBDriver:           "invalid_driver",
		DBConnectionString: "",
	}

	container := NewContainer(cfg)

	_, err := container.DB()
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	// Second call returns the stored error
	_, err2 := container.DB()
	assert.Equal(t, err, err2)
}

func TestContainerSecretStore(t *testing.T) {
	t.Run("fixed secrets", func(t *testing.T) {
		container := NewContainer(testConfig())

		store, err := container.SecretStore()
		require.NoError(t, err)
		assert.Equal(t, []string{"0001aaa", "0002bbb"}, store.Get("http://host1.com"))

		again, err := container.SecretStore()
		require.NoError(t, err)
		assert.Same(t, store, again)
	})

	t.Run("file secrets", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "secrets.csv")
		require.NoError(t, os.WriteFile(path, []byte("http://host1.com,1:aaa,2:bbb\n"), 0o600))

		cfg := testConfig()
		cfg.Secret = ""
		cfg.SecretsFiles = []string{path}
		container := NewContainer(cfg)

		store, err := container.SecretStore()
		require.NoError(t, err)
		assert.IsType(t, &secretsService.FileSecrets{}, store)
		assert.Equal(t, []string{"http://host1.com"}, store.Keys())
	})

	t.Run("mutually exclusive sources", func(t *testing.T) {
		cfg := testConfig()
		cfg.SecretsFiles = []string{"/nonexistent.csv"}
		container := NewContainer(cfg)

		_, err := container.SecretStore()
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)

		_, err = container.Authenticator()
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestContainerNonceBackend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		check   func(t *testing.T, c *Container)
		wantErr error
	}{
		{
			name:   "permissive has no backend",
			mutate: func(cfg *config.Config) { cfg.NonceCacheBackend = "permissive" },
			check: func(t *testing.T, c *Container) {
				backend, err := c.NonceBackend()
				require.NoError(t, err)
				assert.Nil(t, backend)

				_, ok, err := c.ExpiredNoncePurger()
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name:   "memory",
			mutate: func(cfg *config.Config) {},
			check: func(t *testing.T, c *Container) {
				backend, err := c.NonceBackend()
				require.NoError(t, err)
				assert.IsType(t, &nonceRepository.MemoryCache{}, backend)
			},
		},
		{
			name: "memcached",
			mutate: func(cfg *config.Config) {
				cfg.NonceCacheBackend = "memcached"
				cfg.MemcachedServers = []string{"127.0.0.1:11211"}
			},
			check: func(t *testing.T, c *Container) {
				backend, err := c.NonceBackend()
				require.NoError(t, err)
				assert.IsType(t, &nonceRepository.MemcachedCache{}, backend)

				checks, err := c.readinessChecks()
				require.NoError(t, err)
				require.Len(t, checks, 1)
				assert.Equal(t, "nonce_cache", checks[0].Name)
			},
		},
		{
			name:    "memcached without servers",
			mutate:  func(cfg *config.Config) { cfg.NonceCacheBackend = "memcached" },
			wantErr: nonceDomain.ErrCacheBackend,
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *config.Config) { cfg.NonceCacheBackend = "redis" },
			wantErr: apperrors.ErrConfiguration,
		},
		{
			name:    "sql backend must match db driver",
			mutate:  func(cfg *config.Config) { cfg.NonceCacheBackend = "mysql" },
			wantErr: apperrors.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			container := NewContainer(cfg)
			defer func() {
				_ = container.Shutdown(context.Background())
			}()

			if tt.wantErr != nil {
				_, err := container.NonceCache()
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			tt.check(t, container)
		})
	}
}

func TestContainerAuthenticatorIssuesTokens(t *testing.T) {
	container := NewContainer(testConfig())
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	authenticator, err := container.Authenticator()
	require.NoError(t, err)

	token, err := authenticator.IssueToken(context.Background(), "http://host1.com", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), token.UID)
	assert.Equal(t, "http://host1.com", token.Node)
	assert.NotEmpty(t, token.Key)
}

func TestContainerHTTPServer(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = true
	container := NewContainer(cfg)
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	server, err := container.HTTPServer()
	require.NoError(t, err)
	assert.NotNil(t, server.GetHandler())

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, metricsServer)
}

func TestContainerMetricsDisabled(t *testing.T) {
	container := NewContainer(testConfig())

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

// TestContainerLazyInitialization verifies that components are only initialized when accessed.
func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.Nil(t, container.logger)
	require.NotNil(t, container.Logger())
	assert.NotNil(t, container.logger)
}

// TestContainerShutdown verifies that the shutdown method can be called safely.
func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.TODO()))
	assert.Error(t, container.backgroundCtx.Err())
}
