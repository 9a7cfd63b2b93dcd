package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/migrations"
)

// RunMigrations applies pending migrations from the embedded migrations.FS to
// the database file at path. It is idempotent and safe to call multiple times -
// only pending migrations will be executed.
//
// The migrate sqlite driver closes the *sql.DB it is given, so migrations run
// on their own connection rather than on a caller's DB.
func RunMigrations(path string, logger *zap.Logger) error {
	return runMigrations(path, migrations.FS, logger)
}

func runMigrations(path string, fsys fs.FS, logger *zap.Logger) error {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(fsys, ".")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", newVersion))
	return nil
}
