// Package onboarding implements the first-run wizard: a strictly linear
// sequence of steps with guards, optional AI suggestions, and a terminal
// write of the collected profile.
//
// Wizard holds the pure state machine. Service persists drafts between
// requests and performs the terminal writes.
package onboarding

import (
	"errors"
	"strings"

	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/domain/models"
)

// Step names a wizard state.
type Step string

const (
	StepWelcome       Step = "welcome"
	StepProfile       Step = "profile"
	StepAIAssist      Step = "ai_assist"
	StepRoleSelection Step = "role_selection"
	StepComplete      Step = "complete"
	StepSkipped       Step = "skipped"
)

// Steps lists the linear path in order. StepSkipped is reachable only by Skip.
var Steps = []Step{StepWelcome, StepProfile, StepAIAssist, StepRoleSelection, StepComplete}

var (
	ErrNameRequired    = errors.New("full name is required")
	ErrPersonaRequired = errors.New("a persona must be selected")
	ErrTerminal        = errors.New("wizard already finished")
	ErrNoPrevious      = errors.New("no previous step")
	ErrWrongStep       = errors.New("action not available at this step")
	ErrNoSuggestion    = errors.New("no suggestion to apply")
	ErrUnknownField    = errors.New("unknown suggestion field")
	ErrSuggestFailed   = errors.New("ai suggestions failed")
	ErrProfileWrite    = errors.New("profile write failed")
)

// Suggestion fields accepted by Apply.
const (
	FieldJobTitle       = "job_title"
	FieldBio            = "bio"
	FieldExpertiseAreas = "expertise_areas"
	FieldInterests      = "interests"
)

func indexOf(s Step) int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStep reports whether s names a known step.
func ParseStep(s string) (Step, bool) {
	st := Step(s)
	if st == StepSkipped || indexOf(st) >= 0 {
		return st, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s Step) bool {
	return s == StepComplete || s == StepSkipped
}

// guard returns the error blocking Next from step, or nil.
func guard(step Step, f models.OnboardingForm) error {
	switch step {
	case StepProfile:
		if strings.TrimSpace(f.FullName) == "" {
			return ErrNameRequired
		}
	case StepRoleSelection:
		if strings.TrimSpace(f.SelectedPersona) == "" {
			return ErrPersonaRequired
		}
	}
	return nil
}

// CanProceed is false iff a required field of step is empty.
func CanProceed(step Step, f models.OnboardingForm) bool {
	return guard(step, f) == nil
}

// Wizard is one user's wizard state.
type Wizard struct {
	Step        Step
	Form        models.OnboardingForm
	Suggestions *models.OnboardingSuggestions
}

// New starts a wizard at the welcome step with the name prefilled.
func New(fullName string) *Wizard {
	return &Wizard{Step: StepWelcome, Form: models.OnboardingForm{FullName: normalize.Name(fullName)}}
}

// Restore rebuilds a wizard from a stored draft. An unreadable step
// restarts at welcome but keeps the form.
func Restore(d *models.OnboardingDraft) *Wizard {
	st, ok := ParseStep(d.Step)
	if !ok {
		st = StepWelcome
	}
	return &Wizard{Step: st, Form: d.Form, Suggestions: d.Suggestions}
}

// Next advances one step when the current step's guard passes.
func (w *Wizard) Next() error {
	if IsTerminal(w.Step) {
		return ErrTerminal
	}
	if err := guard(w.Step, w.Form); err != nil {
		return err
	}
	w.Step = Steps[indexOf(w.Step)+1]
	return nil
}

// Back returns to the previous step. Back never checks guards.
func (w *Wizard) Back() error {
	if IsTerminal(w.Step) {
		return ErrTerminal
	}
	i := indexOf(w.Step)
	if i <= 0 {
		return ErrNoPrevious
	}
	w.Step = Steps[i-1]
	return nil
}

// Skip exits to the skipped state from any non-terminal step.
func (w *Wizard) Skip() error {
	if IsTerminal(w.Step) {
		return ErrTerminal
	}
	w.Step = StepSkipped
	return nil
}

// SetForm replaces the working form with a cleaned copy of f.
func (w *Wizard) SetForm(f models.OnboardingForm) error {
	if IsTerminal(w.Step) {
		return ErrTerminal
	}
	w.Form = CleanForm(f)
	return nil
}

// SetSuggestions stores AI output. Only valid at the AI assist step.
func (w *Wizard) SetSuggestions(s models.OnboardingSuggestions) error {
	if w.Step != StepAIAssist {
		return ErrWrongStep
	}
	w.Suggestions = &s
	return nil
}

// Apply copies one suggested field into the form, replacing its value.
func (w *Wizard) Apply(field string) error {
	if IsTerminal(w.Step) {
		return ErrTerminal
	}
	s := w.Suggestions
	if s == nil {
		return ErrNoSuggestion
	}
	switch field {
	case FieldJobTitle:
		if s.JobTitle == "" {
			return ErrNoSuggestion
		}
		w.Form.JobTitle = s.JobTitle
	case FieldBio:
		if s.Bio == "" {
			return ErrNoSuggestion
		}
		w.Form.Bio = s.Bio
	case FieldExpertiseAreas:
		if len(s.ExpertiseAreas) == 0 {
			return ErrNoSuggestion
		}
		w.Form.ExpertiseAreas = normalize.Tags(s.ExpertiseAreas, models.MaxExpertiseAreas)
	case FieldInterests:
		if len(s.Interests) == 0 {
			return ErrNoSuggestion
		}
		w.Form.Interests = normalize.Tags(s.Interests, inputval.MaxInterests)
	default:
		return ErrUnknownField
	}
	return nil
}

// CleanForm trims names, strips markup from free text and deduplicates lists.
func CleanForm(f models.OnboardingForm) models.OnboardingForm {
	f.FullName = normalize.Name(htmlsanitize.PlainText(f.FullName))
	f.JobTitle = normalize.Name(htmlsanitize.PlainText(f.JobTitle))
	f.Department = normalize.Name(htmlsanitize.PlainText(f.Department))
	f.Bio = htmlsanitize.PlainText(f.Bio)
	f.ExpertiseAreas = normalize.Tags(htmlsanitize.PlainTextList(f.ExpertiseAreas), 0)
	f.Interests = normalize.Tags(htmlsanitize.PlainTextList(f.Interests), 0)
	f.SelectedPersona = strings.ToLower(strings.TrimSpace(f.SelectedPersona))
	f.Justification = htmlsanitize.PlainText(f.Justification)
	if !f.RequestRole {
		f.Justification = ""
	}
	return f
}

// State is the wizard as returned to the client.
type State struct {
	Step        Step                          `json:"step"`
	StepIndex   int                           `json:"step_index"`
	StepCount   int                           `json:"step_count"`
	CanProceed  bool                          `json:"can_proceed"`
	CanGoBack   bool                          `json:"can_go_back"`
	Form        models.OnboardingForm         `json:"form"`
	Suggestions *models.OnboardingSuggestions `json:"suggestions,omitempty"`
	Completion  int                           `json:"profile_completion"`
	Redirect    string                        `json:"redirect,omitempty"`
	Toast       string                        `json:"toast,omitempty"`
}

// View snapshots the wizard.
func (w *Wizard) View() State {
	i := indexOf(w.Step)
	f := w.Form
	return State{
		Step:        w.Step,
		StepIndex:   i,
		StepCount:   len(Steps),
		CanProceed:  !IsTerminal(w.Step) && CanProceed(w.Step, f),
		CanGoBack:   !IsTerminal(w.Step) && i > 0,
		Form:        f,
		Suggestions: w.Suggestions,
		Completion:  models.ProfileCompletion(f.FullName, f.JobTitle, f.Department, f.Bio, f.ExpertiseAreas),
	}
}

// MessageKey maps a wizard error to its toast message key.
func MessageKey(err error) string {
	switch {
	case errors.Is(err, ErrNameRequired):
		return "error.name_required"
	case errors.Is(err, ErrPersonaRequired):
		return "error.persona_required"
	case errors.Is(err, ErrTerminal):
		return "error.wizard_finished"
	case errors.Is(err, ErrNoSuggestion):
		return "error.nothing_to_apply"
	case errors.Is(err, aiclient.ErrNotConfigured):
		return "error.ai_unavailable"
	case errors.Is(err, ErrSuggestFailed):
		return "error.ai_failed"
	case errors.Is(err, ErrProfileWrite):
		return "error.save_failed"
	case errors.Is(err, ErrNoPrevious), errors.Is(err, ErrWrongStep), errors.Is(err, ErrUnknownField):
		return "error.invalid_request"
	}
	return "error.internal"
}
