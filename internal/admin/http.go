// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package admin exposes the role-gated dashboard endpoints.
//
// The package contains no storage of its own; it presents data owned by
// other domains (accounts) behind the ADMIN and SUPER_ADMIN role guards.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixagen/pixagen/internal/auth"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/middleware"
	"github.com/pixagen/pixagen/internal/platform/respond"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// Handler implements the admin and super-admin HTTP endpoints.
type Handler struct {
	authService *auth.Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(authService *auth.Service) *Handler {
	return &Handler{authService: authService}
}

// AdminRoutes returns the /api/admin router (ADMIN and SUPER_ADMIN).
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin, sec.RoleSuperAdmin))

	router.Get("/dashboard", handler.adminDashboard)

	return router
}

// SuperAdminRoutes returns the /api/superadmin router (SUPER_ADMIN only).
func (handler *Handler) SuperAdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleSuperAdmin))

	router.Get("/dashboard", handler.superAdminDashboard)
	router.Get("/users", handler.listUsers)

	return router
}

// adminDashboard handles GET /api/admin/dashboard requests.
func (handler *Handler) adminDashboard(writer http.ResponseWriter, request *http.Request) {
	identity := ctxutil.GetIdentity(request.Context())

	respond.OK(writer, map[string]any{
		"message": "Admin dashboard",
		"email":   identity.Email,
		"role":    identity.Role,
	})
}

// superAdminDashboard handles GET /api/superadmin/dashboard requests.
func (handler *Handler) superAdminDashboard(writer http.ResponseWriter, request *http.Request) {
	identity := ctxutil.GetIdentity(request.Context())

	respond.OK(writer, map[string]any{
		"message": "Super admin dashboard",
		"email":   identity.Email,
		"role":    identity.Role,
	})
}

// listUsers handles GET /api/superadmin/users requests.
//
// # Returns
//   - Writes HTTP 200 OK with a paginated account list.
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.authService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, int(total)))
}
