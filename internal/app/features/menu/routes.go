// internal/app/features/menu/routes.go
package menu

import "github.com/go-chi/chi/v5"

// Routes mounts GET / (served at /api/navigation).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMenu)
	return r
}
