// internal/app/features/language/routes.go
package language

import "github.com/go-chi/chi/v5"

// Routes mounts GET and POST / (served at /api/locale). Both are public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLocale)
	r.Post("/", h.HandleSet)
	return r
}
