// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

/*
TestContext_RequestID verifies round-tripping of the correlation ID and the
empty-string fallback for contexts that never passed through the middleware.
*/
func TestContext_RequestID(t *testing.T) {
	t.Run("missing_returns_empty", func(t *testing.T) {
		assert.Empty(t, ctxutil.GetRequestID(context.Background()))
	})

	t.Run("round_trip", func(t *testing.T) {
		ctx := ctxutil.WithRequestID(context.Background(), "req-0199")
		assert.Equal(t, "req-0199", ctxutil.GetRequestID(ctx))
	})
}

/*
TestContext_Logger verifies the request-scoped logger round-trip and the
slog.Default fallback.
*/
func TestContext_Logger(t *testing.T) {
	t.Run("missing_returns_default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), ctxutil.GetLogger(context.Background()))
	})

	t.Run("round_trip", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := ctxutil.WithLogger(context.Background(), logger)
		assert.Same(t, logger, ctxutil.GetLogger(ctx))
	})
}

/*
TestContext_Identity verifies identity storage and the nil result for
unauthenticated (allow-listed) requests.
*/
func TestContext_Identity(t *testing.T) {
	t.Run("missing_returns_nil", func(t *testing.T) {
		assert.Nil(t, ctxutil.GetIdentity(context.Background()))
	})

	t.Run("round_trip", func(t *testing.T) {
		identity := &sec.Identity{
			UserID: 123,
			Email:  "alice@example.com",
			Role:   sec.RoleAdmin,
		}

		ctx := ctxutil.WithIdentity(context.Background(), identity)
		retrieved := ctxutil.GetIdentity(ctx)

		require.NotNil(t, retrieved)
		assert.Equal(t, int64(123), retrieved.UserID)
		assert.Equal(t, sec.RoleAdmin, retrieved.Role)
	})
}
