// Package commands implements the CLI actions. Each RunXxx takes its
// dependencies and an io.Writer so it can be driven from tests.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/nodeauth/internal/app"
	apperrors "github.com/allisson/nodeauth/internal/errors"
)

// closeContainer releases the container's pools and caches.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr))
	}
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return apperrors.Wrapf(apperrors.ErrInvalidInput, "format %q (valid options: text, json)", format)
}
