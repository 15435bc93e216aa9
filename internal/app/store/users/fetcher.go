package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// It resolves the user's roles to permissions and a persona.
type Fetcher struct {
	users *mongo.Collection
	roles *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users: db.Collection("users"),
		roles: db.Collection("roles"),
	}
}

// FetchUser retrieves a user by ID. It returns (nil, nil) if the ID is
// malformed or the user is missing or disabled.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.UserProfile
	proj := options.FindOne().SetProjection(bson.M{
		"_id":                  1,
		"full_name":            1,
		"email":                1,
		"roles":                1,
		"status":               1,
		"selected_persona":     1,
		"onboarding_completed": 1,
		"preferred_language":   1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if normalize.Status(u.Status) == models.StatusDisabled {
		return nil, nil
	}

	su := &auth.SessionUser{
		ID:                  u.ID.Hex(),
		Name:                u.FullName,
		Email:               u.Email,
		SelectedPersona:     u.SelectedPersona,
		OnboardingCompleted: u.OnboardingCompleted,
		PreferredLanguage:   u.PreferredLanguage,
	}

	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if n := normalize.Role(r); n != "" {
			names = append(names, n)
		}
	}
	su.Roles = names

	var assignments []persona.Assignment
	if len(names) > 0 {
		cur, err := f.roles.Find(ctx, bson.M{"name": bson.M{"$in": names}})
		if err != nil {
			return nil, err
		}
		var roles []models.Role
		if err := cur.All(ctx, &roles); err != nil {
			return nil, err
		}

		seen := map[string]bool{}
		for _, r := range roles {
			if r.IsAdmin {
				su.IsAdmin = true
			}
			for _, p := range r.Permissions {
				if !seen[p] {
					seen[p] = true
					su.Permissions = append(su.Permissions, p)
				}
			}
			assignments = append(assignments, persona.Assignment{Role: r.Name, Persona: r.Persona})
		}
	}
	su.Persona = string(persona.Resolve(assignments, su.IsAdmin))

	return su, nil
}
