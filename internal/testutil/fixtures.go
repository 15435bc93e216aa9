package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active profile with the given roles.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, roles ...string) models.UserProfile {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.UserProfile{
		ID:         primitive.NewObjectID(),
		Email:      email,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Roles:      roles,
		Status:     "active",
		AuthMethod: "google",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	u.ProfileCompletion = u.Completion()

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateRole inserts a role definition.
func (f *Fixtures) CreateRole(ctx context.Context, role models.Role) models.Role {
	f.t.Helper()

	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	if _, err := f.db.Collection("roles").InsertOne(ctx, role); err != nil {
		f.t.Fatalf("failed to create test role: %v", err)
	}
	return role
}

// CreateRoleRequest inserts a role request with the given status.
func (f *Fixtures) CreateRoleRequest(ctx context.Context, userID primitive.ObjectID, requested, status string, at time.Time) models.RoleRequest {
	f.t.Helper()

	rr := models.RoleRequest{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		RequestedPersona: requested,
		Justification:    "test",
		Status:           status,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
	if _, err := f.db.Collection("role_requests").InsertOne(ctx, rr); err != nil {
		f.t.Fatalf("failed to create test role request: %v", err)
	}
	return rr
}
