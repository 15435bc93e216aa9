// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

// profileResponse is the profile plus the toast in the request language.
type profileResponse struct {
	Profile *models.UserProfile `json:"profile"`
	Changed []string            `json:"changed,omitempty"`
	Message string              `json:"message,omitempty"`
}

// ServeProfile handles GET /api/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, http.StatusUnauthorized, "error.unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	usrStore := userstore.New(h.DB)
	user, err := usrStore.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Write(w, r, http.StatusNotFound, "error.not_found", nil)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "error.internal")
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, profileResponse{Profile: user})
}

// cleanPatch strips markup from free-text fields and dedupes list fields
// before validation, so the item limits count distinct entries.
func cleanPatch(p *models.ProfilePatch) {
	text := func(s *string) {
		if s != nil {
			v := htmlsanitize.PlainText(*s)
			*s = v
		}
	}
	list := func(l *[]string) {
		if l != nil {
			v := normalize.Tags(htmlsanitize.PlainTextList(*l), 0)
			*l = v
		}
	}
	text(p.FullName)
	text(p.JobTitle)
	text(p.Department)
	text(p.Bio)
	list(p.ExpertiseAreas)
	list(p.Interests)
}

// HandleUpdate handles PATCH /api/profile. Only the fields present in the
// body are changed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, http.StatusUnauthorized, "error.unauthorized", nil)
		return
	}

	var patch models.ProfilePatch
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode profile patch failed", err, "error.invalid_request")
		return
	}

	cleanPatch(&patch)
	if err := inputval.ValidateProfilePatch(&patch); err != nil {
		if h.ErrLog.Validation(w, r, err) {
			return
		}
		h.ErrLog.LogServerError(w, r, "validate profile patch failed", err, "error.internal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	usrStore := userstore.New(h.DB)
	user, changed, err := usrStore.UpdateProfile(ctx, uid, patch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Write(w, r, http.StatusNotFound, "error.not_found", nil)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "error.save_failed")
		return
	}

	resp := profileResponse{Profile: user, Changed: changed}
	if len(changed) > 0 {
		h.AuditLog.ProfileUpdated(r.Context(), auditlog.MetaFrom(r), uid, changed)

		keys := []string{events.KeyProfile}
		if patch.SelectedPersona != nil {
			keys = append(keys, events.KeyNavigation)
		}
		if err := h.Events.Invalidate(r.Context(), uid.Hex(), keys...); err != nil {
			h.Log.Warn("cache invalidation failed", zap.String("user_id", uid.Hex()), zap.Error(err))
		}

		if patch.PreferredLanguage != nil && h.Locale != nil {
			h.Locale.SetCookie(w, user.PreferredLanguage, h.SecureCookies)
		}
		resp.Message = locale.From(r.Context()).T("toast.profile_saved")
	}

	uierrors.WriteJSON(w, http.StatusOK, resp)
}
