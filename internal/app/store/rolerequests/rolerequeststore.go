package rolerequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit bounds list queries that do not set one.
const DefaultLimit = 50

var errBadStatus = errors.New(`status must be "pending"|"approved"|"rejected"`)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("role_requests")}
}

// ValidStatus reports whether s is a known role request status.
func ValidStatus(s string) bool {
	switch s {
	case models.RoleRequestPending, models.RoleRequestApproved, models.RoleRequestRejected:
		return true
	}
	return false
}

// Create inserts a role request. Status defaults to pending.
func (s *Store) Create(ctx context.Context, rr models.RoleRequest) (models.RoleRequest, error) {
	rr.ID = primitive.NewObjectID()
	if rr.Status == "" {
		rr.Status = models.RoleRequestPending
	}
	if !ValidStatus(rr.Status) {
		return models.RoleRequest{}, errBadStatus
	}
	now := time.Now().UTC()
	if rr.CreatedAt.IsZero() {
		rr.CreatedAt = now
	}
	rr.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, rr); err != nil {
		return models.RoleRequest{}, err
	}
	return rr, nil
}

// Filter selects role requests. Empty fields match everything.
type Filter struct {
	Status string
	UserID *primitive.ObjectID
	Limit  int64
}

// List returns matching requests, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.RoleRequest, error) {
	q := bson.M{}
	if f.Status != "" {
		if !ValidStatus(f.Status) {
			return nil, errBadStatus
		}
		q["status"] = f.Status
	}
	if f.UserID != nil {
		q["user_id"] = *f.UserID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	out := []models.RoleRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns one user's requests, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.RoleRequest, error) {
	return s.List(ctx, Filter{UserID: &userID})
}
