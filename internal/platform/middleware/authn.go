// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package middleware provides the HTTP middleware chain for the Pixagen API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthN/AuthZ, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/constants"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/respond"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec.TokenCodec]
// implementation, allowing us to easily inject fakes during unit testing.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.TokenClaims, error)
}

// IdentityResolver loads the account behind a verified token's subject.
//
// The canonical implementation is the auth service, which performs a single
// primary-key lookup per request. No caching: a role or email change is
// visible on the very next request.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (*sec.Identity, error)
}

// Authenticate is the authentication gate applied to every inbound request.
//
// # Flow
//  1. Allow-listed path prefix? Pass through untouched (checked before any
//     header parsing).
//  2. 'Authorization: Bearer <token>' header absent or malformed → 401.
//  3. Token signature/expiry invalid → 401. The underlying decode error is
//     echoed in dev_detail only when devMode is set.
//  4. Subject missing or non-numeric → 401.
//  5. Identity does not resolve → 401 "User not found".
//  6. Attach [*sec.Identity] to the request context and pass through.
//
// Every rejection is a structured JSON body with a "detail" field and
// HTTP 401. Signing secrets and raw internals are never leaked in production.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver, allowList []string, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Public Paths ───────────────────────────────────────────────
			for _, prefix := range allowList {
				if strings.HasPrefix(request.URL.Path, prefix) {
					next.ServeHTTP(writer, request)
					return
				}
			}

			// ── 2. Header Extraction ──────────────────────────────────────────
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if authHeader == "" {
				respond.Error(writer, request, apperr.Unauthorized("Missing or malformed authorization header"))
				return
			}

			// The value must split into exactly two space-separated parts.
			// Anything else is an authentication error, never a panic.
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Missing or malformed authorization header"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccess(parts[1])
			if err != nil {
				respond.Error(writer, request, unauthorized("Invalid or expired token", err, devMode))
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				respond.Error(writer, request, unauthorized("Invalid or expired token", err, devMode))
				return
			}

			// ── 4. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), userID)
			if err != nil {
				if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusNotFound {
					respond.Error(writer, request, apperr.Unauthorized("User not found"))
					return
				}
				// Persistence unavailable is a server fault, not an auth failure.
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────

			// Echo the user ID to the logging middleware's completion line.
			if record, ok := request.Context().Value(identityRecordKey{}).(*identityRecord); ok {
				record.userID = identity.UserID
				record.seen = true
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// unauthorized builds a 401, optionally echoing the decode error for development.
func unauthorized(detail string, cause error, devMode bool) *apperr.AppError {
	appError := apperr.Unauthorized(detail).WithCause(cause)
	if devMode && cause != nil {
		appError.DevDetail = cause.Error()
	}
	return appError
}
