// internal/app/features/menu/handler.go
package menu

import (
	"net/http"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/navigation"
)

// Handler serves the navigation tree filtered for the current user.
type Handler struct {
	Menu       navigation.Menu
	Translator locale.Translator
}

// NewHandler serves navigation.DefaultMenu translated by tr.
func NewHandler(tr locale.Translator) *Handler {
	return &Handler{Menu: navigation.DefaultMenu, Translator: tr}
}

type response struct {
	Lang     string                   `json:"lang"`
	Dir      string                   `json:"dir"`
	Sections []navigation.SectionView `json:"sections"`
}

// ServeMenu handles GET /api/navigation. Anonymous callers see only the
// open sections.
func (h *Handler) ServeMenu(w http.ResponseWriter, r *http.Request) {
	l := locale.From(r.Context())
	visible := navigation.Filter(h.Menu, authz.SubjectFrom(r))
	uierrors.WriteJSON(w, http.StatusOK, response{
		Lang:     l.Lang,
		Dir:      l.Dir,
		Sections: navigation.Localize(visible, h.Translator, l.Lang),
	})
}
