// internal/app/features/rolerequests/routes.go
package rolerequests

import (
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts GET /mine (served at /api/role-requests).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/mine", h.ServeMine)
	return r
}

// AdminRoutes mounts GET / (served at /api/admin/role-requests).
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequirePermission(models.PermRoleRequestsView))
	r.Get("/", h.ServeAdminList)
	return r
}
