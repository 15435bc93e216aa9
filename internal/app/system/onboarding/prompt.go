package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/domain/models"
)

const systemPrompt = "You help people joining a municipal innovation platform complete their profile. " +
	"Suggest a concise job title, a short professional bio of two or three sentences, " +
	"up to five expertise areas and a few interests. Respond with JSON only."

var suggestionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"job_title": map[string]any{"type": "string"},
		"bio":       map[string]any{"type": "string"},
		"expertise_areas": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": models.MaxExpertiseAreas,
		},
		"interests": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"job_title", "bio", "expertise_areas", "interests"},
}

// BuildRequest renders the form collected so far into an inference request.
func BuildRequest(f models.OnboardingForm, lang string) aiclient.Request {
	var b strings.Builder
	b.WriteString("Profile so far:\n")
	line := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, value)
		}
	}
	line("Full name", f.FullName)
	line("Job title", f.JobTitle)
	line("Department", f.Department)
	line("Bio", f.Bio)
	line("Expertise areas", strings.Join(f.ExpertiseAreas, ", "))
	line("Interests", strings.Join(f.Interests, ", "))
	line("Intended role", f.SelectedPersona)

	if normalize.Language(lang) == locale.LangAR {
		b.WriteString("\nWrite every value in Arabic.")
	} else {
		b.WriteString("\nWrite every value in English.")
	}

	return aiclient.Request{
		Prompt:             b.String(),
		SystemPrompt:       systemPrompt,
		ResponseJSONSchema: suggestionSchema,
	}
}

// ParseSuggestions decodes provider output and cleans it like user input.
// Output with nothing usable is an error.
func ParseSuggestions(data json.RawMessage) (models.OnboardingSuggestions, error) {
	var raw struct {
		JobTitle       string   `json:"job_title"`
		Bio            string   `json:"bio"`
		ExpertiseAreas []string `json:"expertise_areas"`
		Interests      []string `json:"interests"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.OnboardingSuggestions{}, fmt.Errorf("decode suggestions: %w", err)
	}

	s := models.OnboardingSuggestions{
		JobTitle:       truncate(normalize.Name(htmlsanitize.PlainText(raw.JobTitle)), inputval.MaxTitleLen),
		Bio:            truncate(htmlsanitize.PlainText(raw.Bio), inputval.MaxBioLen),
		ExpertiseAreas: normalize.Tags(htmlsanitize.PlainTextList(raw.ExpertiseAreas), models.MaxExpertiseAreas),
		Interests:      normalize.Tags(htmlsanitize.PlainTextList(raw.Interests), inputval.MaxInterests),
	}
	if s.Empty() {
		return s, aiclient.ErrEmptyResponse
	}
	return s, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
