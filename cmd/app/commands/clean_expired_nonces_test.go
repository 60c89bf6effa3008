package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nodeauth/internal/database"
	"github.com/allisson/nodeauth/internal/nonce/service/mocks"
)

func newTxManager(t *testing.T) (database.TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return database.NewTxManager(db), sqlMock
}

func TestRunCleanExpiredNonces(t *testing.T) {
	ctx := context.Background()
	logger := createTestLogger()

	t.Run("text-output", func(t *testing.T) {
		txManager, sqlMock := newTxManager(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		purger := &mocks.MockExpiredEntryPurger{}
		purger.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(7), nil)

		var out bytes.Buffer
		err := RunCleanExpiredNonces(ctx, purger, txManager, logger, &out, 0, "text")
		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted 7 expired nonce(s)\n", out.String())
		purger.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("json-output-with-older-than", func(t *testing.T) {
		txManager, sqlMock := newTxManager(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		limit := time.Now().Add(-time.Hour)
		purger := &mocks.MockExpiredEntryPurger{}
		purger.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
			return !before.After(limit.Add(time.Minute)) && before.After(limit.Add(-time.Minute))
		})).Return(int64(3), nil)

		var out bytes.Buffer
		err := RunCleanExpiredNonces(ctx, purger, txManager, logger, &out, time.Hour, "json")
		require.NoError(t, err)
		assert.Contains(t, out.String(), `"count": 3`)
		assert.Contains(t, out.String(), `"skipped": false`)
		purger.AssertExpectations(t)
	})

	t.Run("purge-error-rolls-back", func(t *testing.T) {
		txManager, sqlMock := newTxManager(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		purger := &mocks.MockExpiredEntryPurger{}
		purger.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(int64(0), errors.New("connection reset"))

		err := RunCleanExpiredNonces(ctx, purger, txManager, logger, &bytes.Buffer{}, 0, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to clean expired nonces: connection reset")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("backend-without-purge", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCleanExpiredNonces(ctx, nil, nil, logger, &out, 0, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Nothing to clean")
	})

	t.Run("negative-older-than", func(t *testing.T) {
		err := RunCleanExpiredNonces(ctx, nil, nil, logger, &bytes.Buffer{}, -time.Second, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "older-than must not be negative")
	})
}
