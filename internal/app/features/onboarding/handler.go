// internal/app/features/onboarding/handler.go
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/onboarding"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"github.com/dalemusser/innovhub/internal/app/system/ratelimit"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.uber.org/zap"
)

// maxBody caps JSON request bodies.
const maxBody = 64 << 10

// Handler exposes the onboarding wizard over JSON.
type Handler struct {
	Svc    *onboarding.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger

	// SuggestLimiter bounds AI suggestion requests per user. Nil disables it.
	SuggestLimiter *ratelimit.Limiter
}

func NewHandler(svc *onboarding.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

// limitKey buckets rate limits by session user, falling back to client IP.
func limitKey(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return "user:" + u.ID
	}
	return "ip:" + ratelimit.ClientIP(r)
}

func (h *Handler) tooManySuggestions(w http.ResponseWriter, r *http.Request) {
	h.ErrLog.Write(w, r, http.StatusTooManyRequests, "error.rate_limited", nil)
}

// stateResponse is the wizard state plus the toast in the request language.
type stateResponse struct {
	onboarding.State
	Message string `json:"message,omitempty"`
}

// errorResponse carries the state the wizard was left in so the client can
// stay on the right step.
type errorResponse struct {
	uierrors.Body
	State *onboarding.State `json:"state,omitempty"`
}

// actor builds the wizard actor from the session. ok is false when the
// session user is missing or has a malformed ID.
func actor(r *http.Request) (onboarding.Actor, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		return onboarding.Actor{}, false
	}
	u, _ := auth.CurrentUser(r)
	resolved, known := persona.Parse(u.Persona)
	if !known {
		resolved = persona.User
	}
	return onboarding.Actor{
		UserID:          uid,
		Email:           u.Email,
		Name:            u.Name,
		Lang:            locale.From(r.Context()).Lang,
		Persona:         resolved,
		SelectedPersona: u.SelectedPersona,
		Meta:            auditlog.MetaFrom(r),

		OnboardingCompleted: u.OnboardingCompleted,
	}, true
}

type action func(ctx context.Context, a onboarding.Actor) (onboarding.State, error)

// run resolves the actor, runs fn under timeout, and writes the outcome.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, timeout time.Duration, fn action) {
	a, ok := actor(r)
	if !ok {
		h.ErrLog.Write(w, r, http.StatusUnauthorized, "error.unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	st, err := fn(ctx, a)
	if err != nil {
		h.writeError(w, r, a, st, err)
		return
	}
	resp := stateResponse{State: st}
	if st.Toast != "" {
		resp.Message = locale.From(r.Context()).T(st.Toast)
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// statusFor maps a wizard error to its HTTP status.
func statusFor(err error) int {
	switch {
	case inputval.FieldErrors(err) != nil,
		errors.Is(err, onboarding.ErrNameRequired),
		errors.Is(err, onboarding.ErrPersonaRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, onboarding.ErrTerminal):
		return http.StatusConflict
	case errors.Is(err, onboarding.ErrNoPrevious),
		errors.Is(err, onboarding.ErrWrongStep),
		errors.Is(err, onboarding.ErrUnknownField),
		errors.Is(err, onboarding.ErrNoSuggestion):
		return http.StatusBadRequest
	case errors.Is(err, aiclient.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, onboarding.ErrSuggestFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, a onboarding.Actor, st onboarding.State, err error) {
	l := locale.From(r.Context())
	status := statusFor(err)

	key := onboarding.MessageKey(err)
	var fields map[string]string
	switch {
	case inputval.FieldErrors(err) != nil:
		key = "error.validation"
		fields = inputval.FieldErrors(err)
	case errors.Is(err, onboarding.ErrNameRequired):
		fields = map[string]string{"full_name": key}
	case errors.Is(err, onboarding.ErrPersonaRequired):
		fields = map[string]string{"selected_persona": key}
	}

	if status >= http.StatusInternalServerError {
		h.Log.Error("onboarding action failed",
			zap.String("user_id", a.UserID.Hex()),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		h.Log.Debug("onboarding action rejected",
			zap.String("user_id", a.UserID.Hex()),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	body := errorResponse{Body: uierrors.Body{Error: l.T(key), Code: key}}
	if len(fields) > 0 {
		body.Fields = make(map[string]string, len(fields))
		for f, k := range fields {
			body.Fields[f] = l.T(k)
		}
	}
	if st.Step != "" {
		body.State = &st
	}
	uierrors.WriteJSON(w, status, body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
		return false
	}
	return true
}

// ServeState handles GET /api/onboarding.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.Short(), h.Svc.Get)
}

// HandleForm handles PUT /api/onboarding/form.
func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	var f models.OnboardingForm
	if !h.decode(w, r, &f) {
		return
	}
	h.run(w, r, timeouts.Short(), func(ctx context.Context, a onboarding.Actor) (onboarding.State, error) {
		return h.Svc.UpdateForm(ctx, a, f)
	})
}

// HandleNext handles POST /api/onboarding/next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.Medium(), h.Svc.Next)
}

// HandleBack handles POST /api/onboarding/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.Short(), h.Svc.Back)
}

// HandleSkip handles POST /api/onboarding/skip.
func (h *Handler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.Medium(), h.Svc.Skip)
}

// HandleSuggest handles POST /api/onboarding/suggest.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.AI(), h.Svc.Suggest)
}

type applyRequest struct {
	Field string `json:"field"`
}

// HandleApply handles POST /api/onboarding/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, timeouts.Short(), func(ctx context.Context, a onboarding.Actor) (onboarding.State, error) {
		return h.Svc.Apply(ctx, a, req.Field)
	})
}

// HandleComplete handles POST /api/onboarding/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, timeouts.Medium(), h.Svc.Complete)
}
