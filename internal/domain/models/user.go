// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxExpertiseAreas is the policy cap on expertise areas per profile.
const MaxExpertiseAreas = 5

// Profile statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// UserProfile is the profile record for every signed-in person.
//
// NOTE:
//   - Created on first sign-in by the auth callback; never deleted here.
//   - SelectedPersona is a display preference. Permissions come from Roles.
type UserProfile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped

	JobTitle       string   `bson:"job_title,omitempty" json:"job_title,omitempty"`
	Department     string   `bson:"department,omitempty" json:"department,omitempty"`
	Bio            string   `bson:"bio,omitempty" json:"bio,omitempty"`
	ExpertiseAreas []string `bson:"expertise_areas,omitempty" json:"expertise_areas,omitempty"`
	Interests      []string `bson:"interests,omitempty" json:"interests,omitempty"`

	SelectedPersona string   `bson:"selected_persona,omitempty" json:"selected_persona,omitempty"`
	Roles           []string `bson:"roles,omitempty" json:"roles,omitempty"`
	Status          string   `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	OnboardingCompleted   bool       `bson:"onboarding_completed" json:"onboarding_completed"`
	OnboardingCompletedAt *time.Time `bson:"onboarding_completed_at,omitempty" json:"onboarding_completed_at,omitempty"`
	ProfileCompletion     int        `bson:"profile_completion" json:"profile_completion"`

	PreferredLanguage string  `bson:"preferred_language,omitempty" json:"preferred_language,omitempty"`
	AuthMethod        string  `bson:"auth_method,omitempty" json:"auth_method,omitempty"`
	AuthReturnID      *string `bson:"auth_return_id,omitempty" json:"-"` // provider subject (Google ID)

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Completion weights for the five profile fields. They sum to 100.
const (
	WeightFullName   = 25
	WeightJobTitle   = 20
	WeightDepartment = 15
	WeightBio        = 20
	WeightExpertise  = 20
)

// ProfileCompletion returns the weighted completion percentage (0–100) for
// the given field values. Blank strings and empty lists count as unfilled.
func ProfileCompletion(fullName, jobTitle, department, bio string, expertise []string) int {
	pct := 0
	if strings.TrimSpace(fullName) != "" {
		pct += WeightFullName
	}
	if strings.TrimSpace(jobTitle) != "" {
		pct += WeightJobTitle
	}
	if strings.TrimSpace(department) != "" {
		pct += WeightDepartment
	}
	if strings.TrimSpace(bio) != "" {
		pct += WeightBio
	}
	for _, e := range expertise {
		if strings.TrimSpace(e) != "" {
			pct += WeightExpertise
			break
		}
	}
	return pct
}

// Completion recomputes the profile completion from the current fields.
func (u *UserProfile) Completion() int {
	return ProfileCompletion(u.FullName, u.JobTitle, u.Department, u.Bio, u.ExpertiseAreas)
}

// ProfilePatch is a partial profile edit. Nil fields are left unchanged.
type ProfilePatch struct {
	FullName          *string   `json:"full_name,omitempty"`
	JobTitle          *string   `json:"job_title,omitempty"`
	Department        *string   `json:"department,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	ExpertiseAreas    *[]string `json:"expertise_areas,omitempty"`
	Interests         *[]string `json:"interests,omitempty"`
	SelectedPersona   *string   `json:"selected_persona,omitempty"`
	PreferredLanguage *string   `json:"preferred_language,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.JobTitle == nil && p.Department == nil && p.Bio == nil &&
		p.ExpertiseAreas == nil && p.Interests == nil && p.SelectedPersona == nil && p.PreferredLanguage == nil
}
