package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/metrics"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DraftTTL is how long an untouched draft is kept.
const DraftTTL = 7 * 24 * time.Hour

// ProfileStore performs the terminal profile writes.
type ProfileStore interface {
	// CompleteOnboarding upserts the form into the profile keyed by userID
	// and sets the completion flag.
	CompleteOnboarding(ctx context.Context, userID primitive.ObjectID, f models.OnboardingForm, at time.Time) error
	// MarkOnboardingSkipped sets only onboarding_completed=true.
	MarkOnboardingSkipped(ctx context.Context, userID primitive.ObjectID) error
}

// RoleRequestStore inserts role requests.
type RoleRequestStore interface {
	Create(ctx context.Context, rr models.RoleRequest) (models.RoleRequest, error)
}

// DraftStore persists wizard state between requests. A finished wizard
// keeps a terminal draft until it expires.
// Get returns (nil, nil) when the user has no draft.
type DraftStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.OnboardingDraft, error)
	Save(ctx context.Context, d models.OnboardingDraft) error
}

// Actor is the signed-in user driving the wizard.
type Actor struct {
	UserID          primitive.ObjectID
	Email           string
	Name            string
	Lang            string
	Persona         persona.Persona // resolved from roles
	SelectedPersona string          // stored preference, if any
	Meta            auditlog.Meta

	// OnboardingCompleted is the stored profile flag. With no draft it
	// makes the wizard start, and stay, at its terminal step.
	OnboardingCompleted bool
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	Profiles ProfileStore
	Requests RoleRequestStore
	Drafts   DraftStore
	AI       aiclient.Client
	Events   events.Publisher
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// Service runs wizard actions for one user at a time. It holds no per-user
// state; every call loads and saves the draft.
type Service struct {
	profiles ProfileStore
	requests RoleRequestStore
	drafts   DraftStore
	ai       aiclient.Client
	events   events.Publisher
	audit    *auditlog.Logger
	log      *zap.Logger
	now      func() time.Time
}

// NewService wires a Service. A nil Events falls back to events.Nop and a
// nil Log to zap.NewNop.
func NewService(d Deps) *Service {
	s := &Service{
		profiles: d.Profiles,
		requests: d.Requests,
		drafts:   d.Drafts,
		ai:       d.AI,
		events:   d.Events,
		audit:    d.Audit,
		log:      d.Log,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Service) load(ctx context.Context, a Actor) (*Wizard, error) {
	d, err := s.drafts.Get(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if d == nil {
		w := New(a.Name)
		if a.OnboardingCompleted {
			w.Step = StepComplete
		}
		return w, nil
	}
	return Restore(d), nil
}

func (s *Service) save(ctx context.Context, a Actor, w *Wizard) error {
	now := s.now()
	err := s.drafts.Save(ctx, models.OnboardingDraft{
		UserID:      a.UserID,
		Step:        string(w.Step),
		Form:        w.Form,
		Suggestions: w.Suggestions,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(DraftTTL),
	})
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Get returns the current wizard state, starting a new wizard if needed.
func (s *Service) Get(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	return w.View(), nil
}

// UpdateForm validates and stores the working form without moving steps.
// Validation failures are returned as ozzo validation errors.
func (s *Service) UpdateForm(ctx context.Context, a Actor, f models.OnboardingForm) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	f = CleanForm(f)
	if err := inputval.ValidateOnboardingForm(&f); err != nil {
		return w.View(), err
	}
	if err := w.SetForm(f); err != nil {
		return w.View(), err
	}
	if err := s.save(ctx, a, w); err != nil {
		return w.View(), err
	}
	return w.View(), nil
}

// Next advances one step. Next at role selection completes the wizard.
func (s *Service) Next(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	if w.Step == StepRoleSelection {
		return s.complete(ctx, a, w)
	}
	from := w.Step
	if err := w.Next(); err != nil {
		return w.View(), err
	}
	if err := s.save(ctx, a, w); err != nil {
		return w.View(), err
	}
	metrics.ObserveTransition(string(from), "next")
	return w.View(), nil
}

// Back returns one step.
func (s *Service) Back(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	from := w.Step
	if err := w.Back(); err != nil {
		return w.View(), err
	}
	if err := s.save(ctx, a, w); err != nil {
		return w.View(), err
	}
	metrics.ObserveTransition(string(from), "back")
	return w.View(), nil
}

// Skip exits the wizard. Only the completion flag is written; the rest of
// the form is discarded.
func (s *Service) Skip(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	from := w.Step
	if IsTerminal(from) {
		return w.View(), ErrTerminal
	}

	if err := s.profiles.MarkOnboardingSkipped(ctx, a.UserID); err != nil {
		metrics.ObserveCompletion("failed")
		s.log.Error("onboarding skip write failed",
			zap.String("user_id", a.UserID.Hex()), zap.Error(err))
		return w.View(), fmt.Errorf("%w: %v", ErrProfileWrite, err)
	}
	_ = w.Skip()
	w.Form = models.OnboardingForm{}
	w.Suggestions = nil

	s.finish(ctx, a, w, events.KeyProfile, events.KeyNavigation)
	s.audit.OnboardingSkipped(ctx, a.Meta, a.UserID, string(from))
	metrics.ObserveTransition(string(from), "skip")
	metrics.ObserveCompletion("skipped")

	st := w.View()
	st.Redirect = persona.LandingPage(persona.Active(a.Persona, a.SelectedPersona))
	st.Toast = "toast.onboarding_skipped"
	return st, nil
}

// Suggest asks the AI service for profile suggestions. On failure the
// wizard is left unchanged.
func (s *Service) Suggest(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	if w.Step != StepAIAssist {
		return w.View(), ErrWrongStep
	}

	resp, err := s.ai.Invoke(ctx, BuildRequest(w.Form, a.Lang))
	if err != nil {
		if errors.Is(err, aiclient.ErrNotConfigured) {
			return w.View(), err
		}
		return w.View(), fmt.Errorf("%w: %v", ErrSuggestFailed, err)
	}
	if !resp.Success {
		return w.View(), fmt.Errorf("%w: provider reported failure", ErrSuggestFailed)
	}
	sug, err := ParseSuggestions(resp.Data)
	if err != nil {
		s.log.Warn("unusable ai suggestions", zap.String("user_id", a.UserID.Hex()), zap.Error(err))
		return w.View(), fmt.Errorf("%w: %v", ErrSuggestFailed, err)
	}

	if err := w.SetSuggestions(sug); err != nil {
		return w.View(), err
	}
	if err := s.save(ctx, a, w); err != nil {
		return w.View(), err
	}
	metrics.ObserveTransition(string(w.Step), "suggest")
	st := w.View()
	st.Toast = "toast.suggestions_ready"
	return st, nil
}

// Apply copies one suggested field into the form.
func (s *Service) Apply(ctx context.Context, a Actor, field string) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	if err := w.Apply(field); err != nil {
		return w.View(), err
	}
	if err := s.save(ctx, a, w); err != nil {
		return w.View(), err
	}
	metrics.ObserveTransition(string(w.Step), "apply")
	return w.View(), nil
}

// Complete finishes the wizard from role selection.
func (s *Service) Complete(ctx context.Context, a Actor) (State, error) {
	w, err := s.load(ctx, a)
	if err != nil {
		return State{}, err
	}
	if IsTerminal(w.Step) {
		return w.View(), ErrTerminal
	}
	if w.Step != StepRoleSelection {
		return w.View(), ErrWrongStep
	}
	return s.complete(ctx, a, w)
}

// complete performs the terminal writes. The profile upsert is required;
// the role request is best-effort.
func (s *Service) complete(ctx context.Context, a Actor, w *Wizard) (State, error) {
	if err := guard(w.Step, w.Form); err != nil {
		return w.View(), err
	}
	f := w.Form
	if err := inputval.ValidateOnboardingForm(&f); err != nil {
		return w.View(), err
	}

	now := s.now()
	if err := s.profiles.CompleteOnboarding(ctx, a.UserID, f, now); err != nil {
		metrics.ObserveCompletion("failed")
		s.log.Error("onboarding profile write failed",
			zap.String("user_id", a.UserID.Hex()), zap.Error(err))
		return w.View(), fmt.Errorf("%w: %v", ErrProfileWrite, err)
	}

	keys := []string{events.KeyProfile, events.KeyNavigation}
	if f.RequestRole {
		keys = append(keys, events.KeyRoleRequests)
		s.requestRole(ctx, a, f, now)
	}

	_ = w.Next()
	s.finish(ctx, a, w, keys...)

	completion := models.ProfileCompletion(f.FullName, f.JobTitle, f.Department, f.Bio, f.ExpertiseAreas)
	s.audit.OnboardingCompleted(ctx, a.Meta, a.UserID, f.SelectedPersona, completion)
	s.notify(ctx, a, events.TemplateOnboardingWelcome, map[string]string{
		"full_name": f.FullName,
		"persona":   f.SelectedPersona,
	})
	metrics.ObserveTransition(string(StepRoleSelection), "complete")
	metrics.ObserveCompletion("completed")

	s.log.Info("onboarding completed",
		zap.String("user_id", a.UserID.Hex()),
		zap.String("persona", f.SelectedPersona),
		zap.Bool("role_requested", f.RequestRole))

	st := w.View()
	st.Redirect = persona.LandingPage(persona.Active(a.Persona, f.SelectedPersona))
	st.Toast = "toast.onboarding_complete"
	return st, nil
}

func (s *Service) requestRole(ctx context.Context, a Actor, f models.OnboardingForm, now time.Time) {
	_, err := s.requests.Create(ctx, models.RoleRequest{
		UserID:           a.UserID,
		UserEmail:        a.Email,
		UserName:         f.FullName,
		RequestedPersona: f.SelectedPersona,
		Justification:    f.Justification,
		Status:           models.RoleRequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	s.audit.RoleRequested(ctx, a.Meta, a.UserID, f.SelectedPersona, err)
	if err != nil {
		s.log.Warn("role request insert failed",
			zap.String("user_id", a.UserID.Hex()),
			zap.String("persona", f.SelectedPersona),
			zap.Error(err))
		return
	}
	s.notify(ctx, a, events.TemplateRoleRequestSubmitted, map[string]string{
		"full_name": f.FullName,
		"persona":   f.SelectedPersona,
	})
}

// finish stores the terminal draft and tells caches the profile changed.
// Both are best-effort once the profile write succeeded; the profile flag
// keeps the wizard terminal if the draft is lost.
func (s *Service) finish(ctx context.Context, a Actor, w *Wizard, keys ...string) {
	if err := s.save(ctx, a, w); err != nil {
		s.log.Warn("terminal draft save failed", zap.String("user_id", a.UserID.Hex()), zap.Error(err))
	}
	if err := s.events.Invalidate(ctx, a.UserID.Hex(), keys...); err != nil {
		s.log.Warn("cache invalidation failed", zap.String("user_id", a.UserID.Hex()), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, a Actor, template string, vars map[string]string) {
	if a.Email == "" {
		return
	}
	err := s.events.Notify(ctx, events.Notification{
		Template: template,
		To:       a.Email,
		Lang:     a.Lang,
		Vars:     vars,
	})
	if err != nil {
		s.log.Warn("notification trigger failed", zap.String("template", template), zap.Error(err))
	}
}
