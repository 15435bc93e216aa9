// Package inputval validates request payloads with ozzo-validation.
//
// Error messages are locale keys; handlers translate them before responding.
package inputval

import (
	"errors"
	"strings"

	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"github.com/dalemusser/innovhub/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field limits.
const (
	MaxNameLen          = 120
	MaxTitleLen         = 120
	MaxDepartmentLen    = 120
	MaxBioLen           = 2000
	MaxJustificationLen = 1000
	MaxInterests        = 20
)

// Message keys.
const (
	MsgRequired              = "validation.required"
	MsgTooLong               = "validation.too_long"
	MsgTooMany               = "validation.too_many"
	MsgInvalidPersona        = "validation.invalid_persona"
	MsgInvalidLanguage       = "validation.invalid_language"
	MsgJustificationRequired = "validation.justification_required"
)

var selectablePersonas = func() []interface{} {
	out := make([]interface{}, 0, len(persona.Selectable))
	for _, p := range persona.Selectable {
		out = append(out, string(p))
	}
	return out
}()

var supportedLanguages = []interface{}{"en", "ar"}

// IsValidEmail reports whether s is a syntactically valid address without a
// display name.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	return is.EmailFormat.Validate(s) == nil
}

// ValidateOnboardingForm checks limits on the wizard form. Step guards
// (name, persona) are checked by the wizard itself, so empty values pass here.
func ValidateOnboardingForm(f *models.OnboardingForm) error {
	return validation.ValidateStruct(f,
		validation.Field(&f.FullName, validation.RuneLength(0, MaxNameLen).Error(MsgTooLong)),
		validation.Field(&f.JobTitle, validation.RuneLength(0, MaxTitleLen).Error(MsgTooLong)),
		validation.Field(&f.Department, validation.RuneLength(0, MaxDepartmentLen).Error(MsgTooLong)),
		validation.Field(&f.Bio, validation.RuneLength(0, MaxBioLen).Error(MsgTooLong)),
		validation.Field(&f.ExpertiseAreas, validation.Length(0, models.MaxExpertiseAreas).Error(MsgTooMany)),
		validation.Field(&f.Interests, validation.Length(0, MaxInterests).Error(MsgTooMany)),
		validation.Field(&f.SelectedPersona, validation.In(selectablePersonas...).Error(MsgInvalidPersona)),
		validation.Field(&f.Justification,
			validation.When(f.RequestRole, validation.Required.Error(MsgJustificationRequired)),
			validation.RuneLength(0, MaxJustificationLen).Error(MsgTooLong),
		),
	)
}

// ValidateProfilePatch checks a partial profile edit. A present full name
// may not be blanked.
func ValidateProfilePatch(p *models.ProfilePatch) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.FullName,
			validation.When(p.FullName != nil, validation.By(notBlank)),
			validation.RuneLength(0, MaxNameLen).Error(MsgTooLong),
		),
		validation.Field(&p.JobTitle, validation.RuneLength(0, MaxTitleLen).Error(MsgTooLong)),
		validation.Field(&p.Department, validation.RuneLength(0, MaxDepartmentLen).Error(MsgTooLong)),
		validation.Field(&p.Bio, validation.RuneLength(0, MaxBioLen).Error(MsgTooLong)),
		validation.Field(&p.ExpertiseAreas, validation.Length(0, models.MaxExpertiseAreas).Error(MsgTooMany)),
		validation.Field(&p.Interests, validation.Length(0, MaxInterests).Error(MsgTooMany)),
		validation.Field(&p.SelectedPersona, validation.In(selectablePersonas...).Error(MsgInvalidPersona)),
		validation.Field(&p.PreferredLanguage, validation.In(supportedLanguages...).Error(MsgInvalidLanguage)),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(*string)
	if s == nil || strings.TrimSpace(*s) == "" {
		return validation.NewError("validation_required", MsgRequired)
	}
	return nil
}

// FieldErrors flattens validation errors into field → message key.
// It returns nil for errors that are not field validation errors.
func FieldErrors(err error) map[string]string {
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for field, fe := range ve {
		if fe == nil {
			continue
		}
		out[field] = fe.Error()
	}
	return out
}
