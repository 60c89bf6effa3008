package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allisson/nodeauth/internal/database"
	nonceDomain "github.com/allisson/nodeauth/internal/nonce/domain"
)

// MySQLCache implements the nonce cache protocol on the nonce_cache table.
type MySQLCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewMySQLCache creates a MySQLCache.
func NewMySQLCache(db *sql.DB) *MySQLCache {
	return &MySQLCache{db: db, now: time.Now}
}

// Get returns the unexpired value stored at key.
func (m *MySQLCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT cache_value FROM nonce_cache WHERE cache_key = ? AND expires_at > ?`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, m.now().UTC()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to get nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	return value, true, nil
}

// GetMulti returns the unexpired subset of keys.
func (m *MySQLCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	querier := database.GetTx(ctx, m.db)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	query := `SELECT cache_key, cache_value FROM nonce_cache WHERE cache_key IN (` + placeholders + `) AND expires_at > ?`

	args := make([]any, 0, len(keys)+1)
	for _, key := range keys {
		args = append(args, key)
	}
	args = append(args, m.now().UTC())

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get nonce cache keys: %w", nonceDomain.ErrCacheBackend, err)
	}
	return scanCacheRows(rows)
}

// Add inserts key, or takes over an expired row, in one statement. MySQL
// reports 1 affected row for an insert, 2 for an update and 0 when the live
// row was left untouched.
func (m *MySQLCache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	now := m.now().UTC()
	// cache_value is assigned first so expires_at still holds the old value
	// when both IF conditions are evaluated
	query := `INSERT INTO nonce_cache (cache_key, cache_value, expires_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  cache_value = IF(expires_at <= ?, VALUES(cache_value), cache_value),
			  expires_at = IF(expires_at <= ?, VALUES(expires_at), expires_at)`

	result, err := querier.ExecContext(ctx, query, key, value, now.Add(ttl), now, now)
	if err != nil {
		return false, fmt.Errorf("%w: failed to add nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to add nonce cache key: %w", nonceDomain.ErrCacheBackend, err)
	}
	return affected == 1 || affected == 2, nil
}

// DeleteExpired removes rows that expired at or before before.
func (m *MySQLCache) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM nonce_cache WHERE expires_at <= ?`

	result, err := querier.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired nonces: %w", err)
	}
	return result.RowsAffected()
}
