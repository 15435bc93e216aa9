// internal/app/features/me/routes.go
package me

import "github.com/go-chi/chi/v5"

// Routes mounts GET / (served at /api/me). It is public; anonymous callers
// get isAuthenticated=false.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMe)
	return r
}
