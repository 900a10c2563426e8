// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package middleware

import (
	"net/http"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/respond"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// RequireAuth blocks requests that carry no resolved identity.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It exists for routes
// that need authentication but accept every role.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole restricts a route group to a fixed set of permitted roles.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]; it is a pure
// predicate over the identity the gate already resolved, never a
// re-authentication. It implies [RequireAuth].
//
// # Composition
//
// A single guard may permit several roles:
//
//	router.Use(middleware.RequireRole(sec.RoleAdmin, sec.RoleSuperAdmin))
//
// # Flow
//  1. Missing identity → HTTP 401 (gate was skipped or token absent).
//  2. Identity role not in the permitted set → HTTP 403 "Insufficient role".
//  3. Otherwise the request passes through with the identity unchanged.
func RequireRole(permitted ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.In(permitted...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient role"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
