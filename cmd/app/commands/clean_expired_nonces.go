package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/nodeauth/internal/database"
	nonceService "github.com/allisson/nodeauth/internal/nonce/service"
)

// RunCleanExpiredNonces deletes SQL nonce rows that expired more than
// olderThan ago. A nil purger means the configured backend expires entries on
// its own and there is nothing to do.
func RunCleanExpiredNonces(
	ctx context.Context,
	purger nonceService.ExpiredEntryPurger,
	txManager database.TxManager,
	logger *slog.Logger,
	out io.Writer,
	olderThan time.Duration,
	format string,
) error {
	if olderThan < 0 {
		return fmt.Errorf("older-than must not be negative, got: %s", olderThan)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	if purger == nil {
		logger.Info("nonce backend expires entries on its own, nothing to clean")
		if format == "json" {
			return writeJSON(out, map[string]any{"count": 0, "skipped": true})
		}
		_, err := fmt.Fprintln(out, "Nothing to clean: the nonce backend expires entries on its own")
		return err
	}

	before := time.Now().Add(-olderThan)
	logger.Info("cleaning expired nonces", slog.Time("before", before))

	var count int64
	err := txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = purger.DeleteExpired(ctx, before)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clean expired nonces: %w", err)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	if format == "json" {
		return writeJSON(out, map[string]any{"count": count, "skipped": false})
	}
	_, err = fmt.Fprintf(out, "Successfully deleted %d expired nonce(s)\n", count)
	return err
}
