package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/allisson/nodeauth/internal/database"
	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
)

// PostgreSQLCache implements the nonce cache protocol on the nonce_cache table.
// Expired rows are invisible to reads and are overwritten by Add; DeleteExpired
// reclaims their space.
type PostgreSQLCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgreSQLCache creates a PostgreSQLCache.
func NewPostgreSQLCache(db *sql.DB) *PostgreSQLCache {
	return &PostgreSQLCache{db: db, now: time.Now}
}

// Get returns the unexpired value stored at key.
func (p *PostgreSQLCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT cache_value FROM nonce_cache WHERE cache_key = $1 AND expires_at > $2`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, p.now().UTC()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to get nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	return value, true, nil
}

// GetMulti returns the unexpired subset of keys.
func (p *PostgreSQLCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT cache_key, cache_value FROM nonce_cache WHERE cache_key = ANY($1) AND expires_at > $2`

	rows, err := querier.QueryContext(ctx, query, pq.Array(keys), p.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get nonce cache keys: %w", nonceDomain.ErrCacheBackend, err)
	}
	return scanCacheRows(rows)
}

// Add inserts key, or takes over an expired row, in one statement. The
// statement affects a row only when it stored value.
func (p *PostgreSQLCache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	now := p.now().UTC()
	query := `INSERT INTO nonce_cache (cache_key, cache_value, expires_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (cache_key) DO UPDATE
			  SET cache_value = EXCLUDED.cache_value, expires_at = EXCLUDED.expires_at
			  WHERE nonce_cache.expires_at <= $4`

	result, err := querier.ExecContext(ctx, query, key, value, now.Add(ttl), now)
	if err != nil {
		return false, fmt.Errorf("%w: failed to add nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to add nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	return affected == 1, nil
}

// DeleteExpired removes rows that expired at or before before.
func (p *PostgreSQLCache) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM nonce_cache WHERE expires_at <= $1`

	result, err := querier.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired nonces: %w", err)
	}
	return result.RowsAffected()
}

func scanCacheRows(rows *sql.Rows) (map[string][]byte, error) {
	defer func() {
		_ = rows.Close()
	}()

	found := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan nonce cache row: %w", nonceDomain.ErrCacheBackend, err)
		}
		found[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate nonce cache rows: %w", nonceDomain.ErrCacheBackend, err)
	}
	return found, nil
}
