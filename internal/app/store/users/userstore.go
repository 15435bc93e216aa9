package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a profile with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDisabled is returned when a disabled profile tries to sign in.
	ErrDisabled = errors.New("user is disabled")
	errNoEmail  = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a profile by ObjectID. Profile completion is recomputed from
// the stored fields. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	u.ProfileCompletion = u.Completion()
	return &u, nil
}

// GetByIDs loads the profiles for ids. Missing IDs are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"full_name": 1, "email": 1}))
	if err != nil {
		return nil, err
	}
	var out []models.UserProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByEmail looks up a profile by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	u.ProfileCompletion = u.Completion()
	return &u, nil
}

// Create inserts a new profile after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.UserProfile) (models.UserProfile, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.AuthMethod = normalize.AuthMethod(u.AuthMethod)
	u.PreferredLanguage = normalize.Language(u.PreferredLanguage)
	if u.Email == "" {
		return models.UserProfile{}, errNoEmail
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.ProfileCompletion = u.Completion()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.UserProfile{}, ErrDuplicateEmail
		}
		return models.UserProfile{}, err
	}
	return u, nil
}

// Identity is what an external sign-in provider tells us about a person.
type Identity struct {
	Email      string
	Name       string
	Subject    string // provider user ID
	AuthMethod string
	Language   string
}

// FindOrCreate returns the profile for id, creating it on first sign-in.
// Lookup is by provider subject, then by email. created reports whether a
// new profile was inserted. A disabled profile returns ErrDisabled.
func (s *Store) FindOrCreate(ctx context.Context, id Identity) (u *models.UserProfile, created bool, err error) {
	email := normalize.Email(id.Email)
	if email == "" {
		return nil, false, errNoEmail
	}

	filter := bson.M{"email": email}
	if id.Subject != "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"auth_return_id": id.Subject},
			bson.M{"email": email},
		}}
	}

	var existing models.UserProfile
	findErr := s.c.FindOne(ctx, filter).Decode(&existing)
	switch {
	case findErr == nil:
		if normalize.Status(existing.Status) == models.StatusDisabled {
			return nil, false, ErrDisabled
		}
		if id.Subject != "" && existing.AuthReturnID == nil {
			// Link the provider subject the first time we see it.
			if _, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
				"auth_return_id": id.Subject,
				"updated_at":     time.Now().UTC(),
			}}); err != nil {
				return nil, false, err
			}
			existing.AuthReturnID = &id.Subject
		}
		existing.ProfileCompletion = existing.Completion()
		return &existing, false, nil
	case !errors.Is(findErr, mongo.ErrNoDocuments):
		return nil, false, findErr
	}

	nu := models.UserProfile{
		Email:             email,
		FullName:          id.Name,
		AuthMethod:        id.AuthMethod,
		PreferredLanguage: id.Language,
	}
	if id.Subject != "" {
		subject := id.Subject
		nu.AuthReturnID = &subject
	}
	createdUser, err := s.Create(ctx, nu)
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with a concurrent first sign-in.
		got, gerr := s.GetByEmail(ctx, email)
		return got, false, gerr
	}
	if err != nil {
		return nil, false, err
	}
	return &createdUser, true, nil
}

// CompleteOnboarding writes the wizard form into the profile keyed by id and
// marks onboarding complete. It is an idempotent upsert.
func (s *Store) CompleteOnboarding(ctx context.Context, id primitive.ObjectID, f models.OnboardingForm, at time.Time) error {
	fullName := normalize.Name(f.FullName)
	expertise := normalize.Tags(f.ExpertiseAreas, models.MaxExpertiseAreas)
	set := bson.M{
		"full_name":               fullName,
		"full_name_ci":            text.Fold(fullName),
		"job_title":               f.JobTitle,
		"department":              f.Department,
		"bio":                     f.Bio,
		"expertise_areas":         expertise,
		"interests":               normalize.Tags(f.Interests, 0),
		"selected_persona":        f.SelectedPersona,
		"onboarding_completed":    true,
		"onboarding_completed_at": at,
		"profile_completion":      models.ProfileCompletion(fullName, f.JobTitle, f.Department, f.Bio, expertise),
		"updated_at":              at,
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": at, "status": models.StatusActive}},
		options.Update().SetUpsert(true),
	)
	return err
}

// MarkOnboardingSkipped sets onboarding_completed=true and touches nothing
// else. Returns mongo.ErrNoDocuments if the profile does not exist.
func (s *Store) MarkOnboardingSkipped(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"onboarding_completed": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateProfile applies a partial edit and returns the updated profile and
// the names of the fields that were set.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfilePatch) (*models.UserProfile, []string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	set := bson.M{}
	var changed []string
	str := func(field string, src *string, dst *string, clean func(string) string) {
		if src == nil {
			return
		}
		v := clean(*src)
		*dst = v
		set[field] = v
		changed = append(changed, field)
	}
	list := func(field string, src *[]string, dst *[]string, max int) {
		if src == nil {
			return
		}
		v := normalize.Tags(*src, max)
		*dst = v
		set[field] = v
		changed = append(changed, field)
	}
	keep := func(s string) string { return s }

	str("full_name", p.FullName, &u.FullName, normalize.Name)
	str("job_title", p.JobTitle, &u.JobTitle, normalize.Name)
	str("department", p.Department, &u.Department, normalize.Name)
	str("bio", p.Bio, &u.Bio, keep)
	list("expertise_areas", p.ExpertiseAreas, &u.ExpertiseAreas, models.MaxExpertiseAreas)
	list("interests", p.Interests, &u.Interests, 0)
	str("selected_persona", p.SelectedPersona, &u.SelectedPersona, normalize.Role)
	str("preferred_language", p.PreferredLanguage, &u.PreferredLanguage, normalize.Language)

	if len(changed) == 0 {
		return u, nil, nil
	}
	if p.FullName != nil {
		u.FullNameCI = text.Fold(u.FullName)
		set["full_name_ci"] = u.FullNameCI
	}
	u.ProfileCompletion = u.Completion()
	u.UpdatedAt = time.Now().UTC()
	set["profile_completion"] = u.ProfileCompletion
	set["updated_at"] = u.UpdatedAt

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, nil, err
	}
	return u, changed, nil
}
