// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package redis builds the shared client for volatile, TTL-bound data.
//
// The only writer today is the render-job status mirror, which caches the
// last observed state of in-flight generation jobs so clients can poll
// progress without touching the render service.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection tuning. The workload is tiny keys with short TTLs, so the
// pool stays small and every operation carries a tight deadline.
const (
	poolSize     = 10
	minIdleConns = 2
	maxIdleConns = 5

	dialTimeout = 3 * time.Second
	opTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// NewClient parses a redis:// URL, tunes the pool, and ping-validates the
// connection before returning.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = opTimeout
	options.WriteTimeout = opTimeout

	client := redis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_ready", slog.String("addr", options.Addr))
	return client, nil
}

// Ping verifies the client can reach the server within a bounded deadline.
// It backs the /ready probe as well as startup validation.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}
