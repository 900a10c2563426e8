// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package migration applies the SQL schema under data/migrations at startup.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. Migrations run before
// the HTTP server accepts traffic, so every request observes the schema the
// code was built against. Running them is idempotent; a dirty version is a
// hard startup failure.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending up migration found at migrationsPath.
//
// # Parameters
//   - dsn: A postgres:// or postgresql:// connection URL.
//   - migrationsPath: Filesystem path to the migrations directory.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: open source and database: %w", err)
	}
	defer closeMigrator(migrator, logger)

	migrator.Log = &slogBridge{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema version %d is dirty, refusing to start", version)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema_up_to_date", slog.Int("version", int(version)))
			return nil
		}
		return fmt.Errorf("migration: apply up migrations: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("schema_migrated",
		slog.Int("from", int(version)),
		slog.Int("to", int(applied)),
	)
	return nil
}

// closeMigrator releases the source and database handles, logging any errors
// since there is nothing further the caller can do about them.
func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, dbErr := migrator.Close()
	if sourceErr != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
	}
	if dbErr != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
	}
}

// pgx5URL rewrites a postgres URL onto the pgx5:// scheme golang-migrate
// expects for its pgx/v5 driver. Anything else passes through unchanged.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// slogBridge adapts golang-migrate's logger interface to slog.
type slogBridge struct {
	logger *slog.Logger
}

func (b *slogBridge) Printf(format string, args ...any) {
	b.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b *slogBridge) Verbose() bool { return false }
