// internal/app/features/me/handler.go
package me

import (
	"net/http"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"github.com/dalemusser/innovhub/internal/domain/models"
)

// Handler serves the current user's identity and capabilities.
type Handler struct{}

// NewHandler creates a new me handler.
func NewHandler() *Handler {
	return &Handler{}
}

type localeView struct {
	Lang string `json:"lang"`
	Dir  string `json:"dir"`
}

// capabilities tells the client which admin surfaces to offer. The server
// still gates every route itself.
type capabilities struct {
	IsAdmin            bool     `json:"is_admin"`
	Permissions        []string `json:"permissions"`
	ReviewRoleRequests bool     `json:"review_role_requests"`
	ViewAudit          bool     `json:"view_audit"`
}

type userView struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Roles               []string `json:"roles"`
	SelectedPersona     string   `json:"selected_persona,omitempty"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
}

type response struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *userView     `json:"user,omitempty"`
	Persona         string        `json:"persona"`
	Landing         string        `json:"landing"`
	Capabilities    *capabilities `json:"capabilities,omitempty"`
	Locale          localeView    `json:"locale"`
}

// ServeMe handles GET /api/me.
//
// Anonymous callers get isAuthenticated=false with the resolved locale, so
// the client can render the sign-in page in the right direction.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	l := locale.From(r.Context())
	resp := response{
		Persona: string(persona.User),
		Landing: persona.HomePage,
		Locale:  localeView{Lang: l.Lang, Dir: l.Dir},
	}

	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, resp)
		return
	}

	active := authz.Persona(r)
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}

	resp.IsAuthenticated = true
	resp.User = &userView{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Roles:               roles,
		SelectedPersona:     u.SelectedPersona,
		OnboardingCompleted: u.OnboardingCompleted,
	}
	resp.Persona = string(active)
	resp.Landing = persona.LandingPage(active)
	isAdmin := authz.IsAdmin(r)
	resp.Capabilities = &capabilities{
		IsAdmin:            isAdmin,
		Permissions:        perms,
		ReviewRoleRequests: authz.HasPermission(r, models.PermRoleRequestsView),
		ViewAudit:          isAdmin,
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
