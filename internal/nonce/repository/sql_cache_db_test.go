package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nodeauth/internal/testutil"
)

type sqlNonceCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

func newSQLNonceCache(driver string, db *sql.DB) sqlNonceCache {
	if driver == "mysql" {
		return NewMySQLCache(db)
	}
	return NewPostgreSQLCache(db)
}

func TestSQLCache_RealDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			testutil.SkipIfNoDB(t, driver)
			db := testutil.SetupDB(t, driver)
			t.Cleanup(func() {
				testutil.CleanupDB(t, db)
				testutil.TeardownDB(t, db)
			})

			ctx := context.Background()
			cache := newSQLNonceCache(driver, db)

			added, err := cache.Add(ctx, "live", []byte("1"), time.Minute)
			require.NoError(t, err)
			assert.True(t, added)

			added, err = cache.Add(ctx, "live", []byte("2"), time.Minute)
			require.NoError(t, err)
			assert.False(t, added, "a live key is never overwritten")

			value, found, err := cache.Get(ctx, "live")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("1"), value)

			testutil.InsertNonceEntry(t, db, driver, "stale", []byte("old"), time.Now().Add(-time.Hour))

			_, found, err = cache.Get(ctx, "stale")
			require.NoError(t, err)
			assert.False(t, found, "expired rows read as absent")

			values, err := cache.GetMulti(ctx, []string{"live", "stale", "missing"})
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"live": []byte("1")}, values)

			added, err = cache.Add(ctx, "stale", []byte("new"), time.Minute)
			require.NoError(t, err)
			assert.True(t, added, "an expired row can be taken over")

			testutil.InsertNonceEntry(t, db, driver, "gone", []byte("x"), time.Now().Add(-time.Hour))
			deleted, err := cache.DeleteExpired(ctx, time.Now())
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)
			assert.Equal(t, 2, testutil.CountNonceEntries(t, db))
		})
	}
}
