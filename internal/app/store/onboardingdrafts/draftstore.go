package draftstore

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

// Store persists one onboarding draft per user. A finished wizard keeps its
// terminal draft; a TTL index on expires_at removes old drafts.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("onboarding_drafts")}
}

// Get returns the user's draft, or (nil, nil) when none exists.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (*models.OnboardingDraft, error) {
	var d models.OnboardingDraft
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Save replaces the user's draft.
func (s *Store) Save(ctx context.Context, d models.OnboardingDraft) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"user_id": d.UserID}, d, options.Replace().SetUpsert(true))
	return err
}


// CleanupExpired removes drafts past expires_at.
// This is a backup for when TTL index cleanup is delayed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
