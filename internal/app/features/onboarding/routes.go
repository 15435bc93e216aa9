// internal/app/features/onboarding/routes.go
package onboarding

import (
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the wizard under /api/onboarding. Every route needs a
// signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeState)
		pr.Put("/form", h.HandleForm)
		pr.Post("/next", h.HandleNext)
		pr.Post("/back", h.HandleBack)
		pr.Post("/skip", h.HandleSkip)
		if h.SuggestLimiter != nil {
			pr.With(h.SuggestLimiter.Middleware(limitKey, h.tooManySuggestions)).Post("/suggest", h.HandleSuggest)
		} else {
			pr.Post("/suggest", h.HandleSuggest)
		}
		pr.Post("/apply", h.HandleApply)
		pr.Post("/complete", h.HandleComplete)
	})

	return r
}
