package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	apperrors "github.com/allisson/nodeauth/internal/errors"
)

// migrationDirs maps DB_DRIVER values to their migration folders.
var migrationDirs = map[string]string{
	"postgres": "migrations/postgresql",
	"mysql":    "migrations/mysql",
}

// migrateURL turns a database/sql DSN into the URL golang-migrate expects.
// MySQL DSNs carry no scheme of their own.
func migrateURL(driver, dsn string) string {
	if driver == "mysql" && !strings.HasPrefix(dsn, "mysql://") {
		return "mysql://" + dsn
	}
	return dsn
}

// RunMigrations creates the nonce_cache table used by the SQL nonce backends.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	dir, ok := migrationDirs[driver]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrConfiguration, "no migrations for driver %q", driver)
	}

	logger.Info("running database migrations", slog.String("driver", driver), slog.String("dir", dir))

	m, err := migrate.New("file://"+dir, migrateURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("database already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("migrations completed", slog.Uint64("version", uint64(version)))
	return nil
}
