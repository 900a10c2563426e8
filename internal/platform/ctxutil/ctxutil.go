// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package ctxutil is the typed accessor layer over the request-scoped values
// the middleware chain deposits in [context.Context]: the correlation ID, the
// per-request logger, and the resolved identity.
//
// Readers always get a usable value back. A missing logger degrades to
// [slog.Default]; a missing request ID to the empty string; a missing
// identity to nil, which callers treat as "unauthenticated".
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/pixagen/pixagen/internal/platform/ctxkey"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// # Request Tracing

// WithRequestID attaches the correlation ID for the current request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request-scoped sub-logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, or [slog.Default] when the
// context did not pass through the logging middleware (startup, tests).
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// # Identity & Access

// WithIdentity attaches the resolved request identity.
func WithIdentity(ctx context.Context, identity *sec.Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// GetIdentity returns the [*sec.Identity] for the request, or nil when the
// request is unauthenticated (allow-listed paths).
func GetIdentity(ctx context.Context) *sec.Identity {
	identity, _ := ctx.Value(ctxkey.KeyIdentity).(*sec.Identity)
	return identity
}
