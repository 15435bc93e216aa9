package onboarding_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/onboarding"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizard_LinearPath(t *testing.T) {
	w := onboarding.New("  Ali   Hassan ")
	assert.Equal(t, "Ali Hassan", w.Form.FullName)
	w.Form.SelectedPersona = "citizen"

	for _, want := range []onboarding.Step{
		onboarding.StepProfile,
		onboarding.StepAIAssist,
		onboarding.StepRoleSelection,
		onboarding.StepComplete,
	} {
		require.NoError(t, w.Next())
		assert.Equal(t, want, w.Step)
	}
	assert.ErrorIs(t, w.Next(), onboarding.ErrTerminal)
	assert.ErrorIs(t, w.Back(), onboarding.ErrTerminal)
	assert.ErrorIs(t, w.Skip(), onboarding.ErrTerminal)
}

func TestWizard_ProfileGuard(t *testing.T) {
	w := &onboarding.Wizard{Step: onboarding.StepProfile}
	assert.ErrorIs(t, w.Next(), onboarding.ErrNameRequired)
	assert.Equal(t, onboarding.StepProfile, w.Step)

	w.Form.FullName = "   "
	assert.ErrorIs(t, w.Next(), onboarding.ErrNameRequired)

	w.Form.FullName = "Ali"
	require.NoError(t, w.Next())
	assert.Equal(t, onboarding.StepAIAssist, w.Step)
}

func TestWizard_RoleSelectionGuard(t *testing.T) {
	w := &onboarding.Wizard{Step: onboarding.StepRoleSelection, Form: models.OnboardingForm{FullName: "Ali"}}
	assert.ErrorIs(t, w.Next(), onboarding.ErrPersonaRequired)
	assert.Equal(t, onboarding.StepRoleSelection, w.Step)
}

func TestWizard_Back(t *testing.T) {
	w := onboarding.New("")
	assert.ErrorIs(t, w.Back(), onboarding.ErrNoPrevious)

	w.Step = onboarding.StepAIAssist
	require.NoError(t, w.Back())
	assert.Equal(t, onboarding.StepProfile, w.Step)

	// Back ignores guards.
	require.NoError(t, w.Back())
	assert.Equal(t, onboarding.StepWelcome, w.Step)
}

func TestWizard_SkipFromAnyStep(t *testing.T) {
	for _, st := range onboarding.Steps[:4] {
		w := &onboarding.Wizard{Step: st}
		require.NoError(t, w.Skip(), st)
		assert.Equal(t, onboarding.StepSkipped, w.Step)
	}
}

func TestWizard_SuggestionsAndApply(t *testing.T) {
	w := &onboarding.Wizard{Step: onboarding.StepProfile}
	assert.ErrorIs(t, w.SetSuggestions(models.OnboardingSuggestions{JobTitle: "x"}), onboarding.ErrWrongStep)
	assert.ErrorIs(t, w.Apply(onboarding.FieldJobTitle), onboarding.ErrNoSuggestion)

	w.Step = onboarding.StepAIAssist
	require.NoError(t, w.SetSuggestions(models.OnboardingSuggestions{
		JobTitle:       "Urban Planner",
		ExpertiseAreas: []string{"Mobility", "mobility", "GIS", "Energy", "Water", "Waste", "Parks"},
	}))

	require.NoError(t, w.Apply(onboarding.FieldJobTitle))
	assert.Equal(t, "Urban Planner", w.Form.JobTitle)
	assert.Empty(t, w.Form.Bio, "other fields untouched")

	require.NoError(t, w.Apply(onboarding.FieldExpertiseAreas))
	assert.Equal(t, []string{"Mobility", "GIS", "Energy", "Water", "Waste"}, w.Form.ExpertiseAreas)

	assert.ErrorIs(t, w.Apply(onboarding.FieldBio), onboarding.ErrNoSuggestion)
	assert.ErrorIs(t, w.Apply("salary"), onboarding.ErrUnknownField)
}

func TestRestore_UnknownStep(t *testing.T) {
	w := onboarding.Restore(&models.OnboardingDraft{Step: "bogus", Form: models.OnboardingForm{FullName: "Ali"}})
	assert.Equal(t, onboarding.StepWelcome, w.Step)
	assert.Equal(t, "Ali", w.Form.FullName)
}

// CanProceed is false exactly when a required field of the step is empty.
func TestCanProceed_RequiredFields(t *testing.T) {
	names := []string{"", " ", "\t", "Ali", "علي"}
	personas := []string{"", "  ", "citizen", "expert"}
	required := map[onboarding.Step]func(models.OnboardingForm) bool{
		onboarding.StepProfile:       func(f models.OnboardingForm) bool { return blank(f.FullName) },
		onboarding.StepRoleSelection: func(f models.OnboardingForm) bool { return blank(f.SelectedPersona) },
	}

	steps := append(append([]onboarding.Step{}, onboarding.Steps...), onboarding.StepSkipped)
	for _, st := range steps {
		for _, n := range names {
			for _, p := range personas {
				f := models.OnboardingForm{FullName: n, SelectedPersona: p, Bio: "ignored"}
				missing := false
				if check, ok := required[st]; ok {
					missing = check(f)
				}
				assert.Equal(t, !missing, onboarding.CanProceed(st, f), "step=%s name=%q persona=%q", st, n, p)
			}
		}
	}
}

func blank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

func TestCleanForm(t *testing.T) {
	f := onboarding.CleanForm(models.OnboardingForm{
		FullName:        " <b>Ali</b> ",
		Bio:             "Hello <script>alert(1)</script>world",
		ExpertiseAreas:  []string{" GIS ", "gis", ""},
		SelectedPersona: " Citizen ",
		Justification:   "should be dropped",
	})
	assert.Equal(t, "Ali", f.FullName)
	assert.Equal(t, "Hello world", f.Bio)
	assert.Equal(t, []string{"GIS"}, f.ExpertiseAreas)
	assert.Equal(t, "citizen", f.SelectedPersona)
	assert.Empty(t, f.Justification)
}

func TestView(t *testing.T) {
	w := &onboarding.Wizard{Step: onboarding.StepProfile, Form: models.OnboardingForm{FullName: "Ali", JobTitle: "Engineer"}}
	st := w.View()
	assert.Equal(t, 1, st.StepIndex)
	assert.Equal(t, 5, st.StepCount)
	assert.True(t, st.CanProceed)
	assert.True(t, st.CanGoBack)
	assert.Equal(t, 45, st.Completion)

	w.Step = onboarding.StepSkipped
	st = w.View()
	assert.False(t, st.CanProceed)
	assert.False(t, st.CanGoBack)
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "error.name_required", onboarding.MessageKey(onboarding.ErrNameRequired))
	assert.Equal(t, "error.ai_unavailable", onboarding.MessageKey(aiclient.ErrNotConfigured))
	assert.Equal(t, "error.save_failed", onboarding.MessageKey(errors.Join(onboarding.ErrProfileWrite, errors.New("boom"))))
	assert.Equal(t, "error.internal", onboarding.MessageKey(errors.New("other")))
}
