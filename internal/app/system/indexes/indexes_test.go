package indexes_test

import (
	"testing"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/indexes"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, c *mongo.Collection) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := c.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode index failed: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":             {"uniq_users_email", "uniq_users_auth_return_id", "idx_users_roles_fullnameci_id"},
		"roles":             {"uniq_roles_name"},
		"role_requests":     {"idx_role_requests_status_created", "idx_role_requests_user_created"},
		"onboarding_drafts": {"uniq_onboarding_drafts_user", "ttl_onboarding_drafts_expires"},
		"oauth_states":      {"uniq_oauth_states_state", "ttl_oauth_states_expires"},
		"audit_events":      {"idx_audit_timestamp", "idx_audit_user_timestamp", "idx_audit_category_type_timestamp"},
	}
	for coll, names := range want {
		got := indexNames(t, db.Collection(coll))
		for _, n := range names {
			if !got[n] {
				t.Errorf("%s: expected index %q", coll, n)
			}
		}
	}
}

func TestEnsureAll_UniqueEmailAllowsMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := db.Collection("users")

	// Two profiles without an email do not collide.
	for i := 0; i < 2; i++ {
		if _, err := users.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "full_name": "x", "created_at": time.Now()}); err != nil {
			t.Fatalf("insert without email #%d failed: %v", i+1, err)
		}
	}

	if _, err := users.InsertOne(ctx, bson.M{"email": "a@example.com"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"email": "a@example.com"}); err == nil {
		t.Error("expected duplicate email to be rejected")
	}
}
