// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/middleware"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// serveGuard runs one request through RequireRole into a trivial 200 handler.
func serveGuard(identity *sec.Identity, permitted ...sec.Role) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	if identity != nil {
		request = request.WithContext(ctxutil.WithIdentity(request.Context(), identity))
	}

	recorder := httptest.NewRecorder()
	middleware.RequireRole(permitted...)(next).ServeHTTP(recorder, request)
	return recorder
}

/*
TestRequireRole covers the set-membership matrix for the role guard.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		role      sec.Role
		permitted []sec.Role
		wantCode  int
	}{
		{"user_blocked_from_admin", sec.RoleUser, []sec.Role{sec.RoleAdmin, sec.RoleSuperAdmin}, http.StatusForbidden},
		{"admin_passes_admin_guard", sec.RoleAdmin, []sec.Role{sec.RoleAdmin, sec.RoleSuperAdmin}, http.StatusOK},
		{"super_admin_passes_admin_guard", sec.RoleSuperAdmin, []sec.Role{sec.RoleAdmin, sec.RoleSuperAdmin}, http.StatusOK},
		{"admin_blocked_from_super_admin", sec.RoleAdmin, []sec.Role{sec.RoleSuperAdmin}, http.StatusForbidden},
		{"exact_single_role_passes", sec.RoleUser, []sec.Role{sec.RoleUser}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := &sec.Identity{UserID: 1, Email: "x@example.com", Role: tt.role}
			recorder := serveGuard(identity, tt.permitted...)
			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

/*
TestRequireRole_Forbidden verifies the exact 403 body contract.
*/
func TestRequireRole_Forbidden(t *testing.T) {
	identity := &sec.Identity{UserID: 1, Email: "x@example.com", Role: sec.RoleUser}
	recorder := serveGuard(identity, sec.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, recorder.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient role", body.Detail)
}

/*
TestRequireRole_MissingIdentity checks that a skipped gate yields 401, not 403.
*/
func TestRequireRole_MissingIdentity(t *testing.T) {
	recorder := serveGuard(nil, sec.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequireAuth checks the role-agnostic authentication guard.
*/
func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		identity := &sec.Identity{UserID: 1, Role: sec.RoleUser}
		request = request.WithContext(ctxutil.WithIdentity(request.Context(), identity))

		recorder := httptest.NewRecorder()
		middleware.RequireAuth(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("anonymous_blocked", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

		recorder := httptest.NewRecorder()
		middleware.RequireAuth(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
