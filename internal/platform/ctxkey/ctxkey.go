// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package ctxkey holds the context keys shared by the middleware chain and
// the ctxutil accessors. Keys use an unexported named type, so values stored
// here cannot collide with string keys from third-party packages even when
// the literal text matches.
package ctxkey

type key string

const (
	// KeyRequestID stores the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyIdentity stores the resolved request identity ([*sec.Identity]).
	KeyIdentity key = "identity"

	// KeyLogger stores the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
