// internal/app/features/language/handler.go
package language

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PreferenceStore persists a signed-in user's language choice.
type PreferenceStore interface {
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfilePatch) (*models.UserProfile, []string, error)
}

var _ PreferenceStore = (*userstore.Store)(nil)

// Handler serves the language switcher.
type Handler struct {
	Locale        *locale.Manager
	Users         PreferenceStore
	Events        events.Publisher
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	SecureCookies bool
}

func NewHandler(loc *locale.Manager, users PreferenceStore, pub events.Publisher, errLog *uierrors.ErrorLogger, secureCookies bool, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{Locale: loc, Users: users, Events: pub, ErrLog: errLog, Log: logger, SecureCookies: secureCookies}
}

type localeResponse struct {
	Lang      string   `json:"lang"`
	Dir       string   `json:"dir"`
	Supported []string `json:"supported"`
	Message   string   `json:"message,omitempty"`
}

// ServeLocale handles GET /api/locale.
func (h *Handler) ServeLocale(w http.ResponseWriter, r *http.Request) {
	l := locale.From(r.Context())
	uierrors.WriteJSON(w, http.StatusOK, localeResponse{
		Lang:      l.Lang,
		Dir:       l.Dir,
		Supported: h.Locale.SupportedLanguages(),
	})
}

// HandleSet handles POST /api/locale with {"lang": "..."}. The cookie is
// always set; signed-in users also get preferred_language stored.
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Lang string `json:"lang"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode locale failed", err, "error.invalid_request")
		return
	}
	if !h.Locale.IsSupported(body.Lang) {
		h.ErrLog.Write(w, r, http.StatusBadRequest, "error.unsupported_language", nil)
		return
	}
	lang := h.Locale.NormalizeLanguage(body.Lang)

	if _, uid, ok := authz.UserCtx(r); ok && h.Users != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if _, _, err := h.Users.UpdateProfile(ctx, uid, models.ProfilePatch{PreferredLanguage: &lang}); err != nil {
			h.ErrLog.LogServerError(w, r, "store preferred language failed", err, "error.save_failed")
			return
		}
		if err := h.Events.Invalidate(r.Context(), uid.Hex(), events.KeyProfile, events.KeyNavigation); err != nil {
			h.Log.Warn("cache invalidation failed", zap.String("user_id", uid.Hex()), zap.Error(err))
		}
	}

	h.Locale.SetCookie(w, lang, h.SecureCookies)
	l := h.Locale.Locale(lang)
	uierrors.WriteJSON(w, http.StatusOK, localeResponse{
		Lang:      l.Lang,
		Dir:       l.Dir,
		Supported: h.Locale.SupportedLanguages(),
		Message:   l.T("toast.language_saved"),
	})
}
