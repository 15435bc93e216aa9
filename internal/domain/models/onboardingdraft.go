// internal/domain/models/onboardingdraft.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OnboardingForm holds the fields collected by the onboarding wizard.
type OnboardingForm struct {
	FullName        string   `bson:"full_name" json:"full_name"`
	JobTitle        string   `bson:"job_title" json:"job_title"`
	Department      string   `bson:"department" json:"department"`
	Bio             string   `bson:"bio" json:"bio"`
	ExpertiseAreas  []string `bson:"expertise_areas" json:"expertise_areas"`
	Interests       []string `bson:"interests" json:"interests"`
	SelectedPersona string   `bson:"selected_persona" json:"selected_persona"`
	RequestRole     bool     `bson:"request_role" json:"request_role"`
	Justification   string   `bson:"justification" json:"justification"`
}

// OnboardingSuggestions holds AI-proposed values the user may apply one by one.
type OnboardingSuggestions struct {
	JobTitle       string   `bson:"job_title,omitempty" json:"job_title,omitempty"`
	Bio            string   `bson:"bio,omitempty" json:"bio,omitempty"`
	ExpertiseAreas []string `bson:"expertise_areas,omitempty" json:"expertise_areas,omitempty"`
	Interests      []string `bson:"interests,omitempty" json:"interests,omitempty"`
}

// Empty reports whether no suggestion field is set.
func (s OnboardingSuggestions) Empty() bool {
	return s.JobTitle == "" && s.Bio == "" && len(s.ExpertiseAreas) == 0 && len(s.Interests) == 0
}

// OnboardingDraft is the persisted wizard state for one user.
type OnboardingDraft struct {
	UserID      primitive.ObjectID     `bson:"user_id" json:"-"`
	Step        string                 `bson:"step" json:"step"`
	Form        OnboardingForm         `bson:"form" json:"form"`
	Suggestions *OnboardingSuggestions `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
	UpdatedAt   time.Time              `bson:"updated_at" json:"updated_at"`
	ExpiresAt   time.Time              `bson:"expires_at" json:"-"`
}
