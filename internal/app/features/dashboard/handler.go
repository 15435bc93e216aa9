// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"go.uber.org/zap"
)

// OnboardingPath is where users who have not finished onboarding land.
const OnboardingPath = "/onboarding"

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// Destination picks where a signed-in user goes from /dashboard.
func Destination(u *auth.SessionUser, active persona.Persona) string {
	if !u.OnboardingCompleted {
		return OnboardingPath
	}
	return persona.LandingPage(active)
}

// ServeDashboard dispatches to the persona landing page, or to onboarding
// when the profile has not been through the wizard. JSON clients get
// {"redirect": path} instead of a 303.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	active := authz.Persona(r)
	dest := Destination(u, active)
	h.Log.Debug("dashboard dispatch",
		zap.String("user_id", u.ID),
		zap.String("persona", string(active)),
		zap.String("dest", dest))

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		uierrors.WriteJSON(w, http.StatusOK, map[string]string{
			"redirect": dest,
			"persona":  string(active),
		})
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
