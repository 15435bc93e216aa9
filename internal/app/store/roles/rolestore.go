package rolestore

import (
	"context"

	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roles")}
}

// List returns every role sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Role, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Role
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByNames loads the roles with the given names. Unknown names are ignored.
func (s *Store) GetByNames(ctx context.Context, names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	norm := make([]string, 0, len(names))
	for _, n := range names {
		norm = append(norm, normalize.Role(n))
	}
	cur, err := s.c.Find(ctx, bson.M{"name": bson.M{"$in": norm}})
	if err != nil {
		return nil, err
	}
	var out []models.Role
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeedDefaults inserts each role in defs that does not exist yet. Existing
// roles are left untouched so administrators can edit them. It returns the
// number of roles inserted.
func (s *Store) SeedDefaults(ctx context.Context, defs []models.Role) (int, error) {
	inserted := 0
	for _, r := range defs {
		r.Name = normalize.Role(r.Name)
		res, err := s.c.UpdateOne(ctx,
			bson.M{"name": r.Name},
			bson.M{"$setOnInsert": bson.M{
				"name":        r.Name,
				"persona":     r.Persona,
				"permissions": r.Permissions,
				"is_admin":    r.IsAdmin,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return inserted, err
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}
