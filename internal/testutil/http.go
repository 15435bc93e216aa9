package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser returns a signed-in administrator.
func AdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:                  primitive.NewObjectID().Hex(),
		Name:                "Test Admin",
		Email:               "admin@test.com",
		Roles:               []string{"admin"},
		IsAdmin:             true,
		Persona:             "admin",
		OnboardingCompleted: true,
	}
}

// NewcomerUser returns a signed-in user with no roles who has not onboarded.
func NewcomerUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Ali",
		Email:   "ali@test.com",
		Persona: "user",
	}
}

// RoleUser returns an onboarded user holding the named default role.
func RoleUser(roleName string) *auth.SessionUser {
	u := &auth.SessionUser{
		ID:                  primitive.NewObjectID().Hex(),
		Name:                "Test " + roleName,
		Email:               roleName + "@test.com",
		Roles:               []string{roleName},
		Persona:             "user",
		OnboardingCompleted: true,
	}
	for _, r := range models.DefaultRoles {
		if r.Name == roleName {
			u.Permissions = r.Permissions
			u.IsAdmin = r.IsAdmin
			if r.Persona != "" {
				u.Persona = r.Persona
			}
		}
	}
	return u
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user *auth.SessionUser) *http.Request {
	return auth.WithTestUser(r, user)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
