// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package postgres builds the pgx connection pool shared by every
// repository in the application.
//
// # Architecture
//
// This package is part of the Infrastructure layer. Domain packages receive
// the pool through their repository constructors and never open connections
// themselves.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixagen/pixagen/internal/platform/constants"
)

// Pool tuning for the expected workload: short CRUD queries from the API
// handlers plus the occasional long-running generation transaction.
const (
	poolMaxConns          = 25
	poolMinConns          = 5
	poolConnLifetime      = time.Hour
	poolConnIdleTime      = 10 * time.Minute
	poolHealthCheckPeriod = time.Minute
	dialTimeout           = 5 * time.Second
	pingTimeout           = 2 * time.Second
)

// NewPool opens, tunes, and ping-validates a PostgreSQL connection pool.
//
// # Parameters
//   - ctx: Context bounding the initial connection attempt.
//   - dsn: A postgres:// URL or libpq-style connection string.
//   - logger: Structured logger for pool lifecycle events.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse DSN: %w", err)
	}

	cfg.MaxConns = poolMaxConns
	cfg.MinConns = poolMinConns
	cfg.MaxConnLifetime = poolConnLifetime
	cfg.MaxConnIdleTime = poolConnIdleTime
	cfg.HealthCheckPeriod = poolHealthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = dialTimeout

	// Every new physical connection gets a statement timeout aligned with
	// the request deadline, so an abandoned request cannot pin a backend.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf(
			"SET statement_timeout = '%ds'", int(constants.GlobalRequestTimeout.Seconds())))
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_ready",
		slog.Int("max_conns", int(pool.Stat().MaxConns())),
	)
	return pool, nil
}

// Ping verifies the pool can reach the database within a bounded deadline.
// It backs the /ready probe as well as startup validation.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}
