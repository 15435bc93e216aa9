package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/indexes"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.UserProfile{
		FullName: "  Ali   Hassan ",
		Email:    "Ali@Example.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FullName != "Ali Hassan" || created.FullNameCI == "" {
		t.Errorf("name not normalized: %q / %q", created.FullName, created.FullNameCI)
	}
	if created.Email != "ali@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.Status != models.StatusActive {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	if created.ProfileCompletion != models.WeightFullName {
		t.Errorf("expected completion %d, got %d", models.WeightFullName, created.ProfileCompletion)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.UserProfile{FullName: "One", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.UserProfile{FullName: "Two", Email: "DUP@example.com"})
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	a := fx.CreateUser(ctx, "Ali Hassan", "ali@example.com")
	b := fx.CreateUser(ctx, "Sara Noor", "sara@example.com")

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got))
	}
	names := map[primitive.ObjectID]string{}
	for _, u := range got {
		names[u.ID] = u.FullName
	}
	if names[a.ID] != "Ali Hassan" || names[b.ID] != "Sara Noor" {
		t.Errorf("names = %v", names)
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v", none, err)
	}
}

func TestStore_FindOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := userstore.Identity{Email: "sara@example.com", Name: "Sara", Subject: "g-123", AuthMethod: "google", Language: "ar-SA"}

	u, created, err := store.FindOrCreate(ctx, id)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if !created {
		t.Error("expected first sign-in to create the profile")
	}
	if u.PreferredLanguage != "ar" {
		t.Errorf("expected preferred language ar, got %q", u.PreferredLanguage)
	}
	if u.OnboardingCompleted {
		t.Error("new profile must not be onboarded")
	}

	again, created, err := store.FindOrCreate(ctx, id)
	if err != nil {
		t.Fatalf("second FindOrCreate failed: %v", err)
	}
	if created || again.ID != u.ID {
		t.Errorf("expected existing profile, created=%v id=%s", created, again.ID.Hex())
	}
}

func TestStore_FindOrCreate_LinksSubjectAndRejectsDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := fixtures.CreateUser(ctx, "Omar", "omar@example.com")

	u, created, err := store.FindOrCreate(ctx, userstore.Identity{Email: "omar@example.com", Subject: "g-9"})
	if err != nil || created {
		t.Fatalf("FindOrCreate = created %v, err %v", created, err)
	}
	if u.ID != existing.ID || u.AuthReturnID == nil || *u.AuthReturnID != "g-9" {
		t.Errorf("subject not linked: %+v", u)
	}

	if _, err := db.Collection("users").UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{"status": "disabled"}}); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	_, _, err = store.FindOrCreate(ctx, userstore.Identity{Email: "omar@example.com"})
	if !errors.Is(err, userstore.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestStore_CompleteOnboarding(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ali", "ali@example.com")
	at := time.Now().UTC().Truncate(time.Millisecond)
	form := models.OnboardingForm{
		FullName:        "Ali",
		JobTitle:        "Engineer",
		Department:      "Transport",
		Bio:             "Builds roads.",
		ExpertiseAreas:  []string{"Roads", "roads", "GIS"},
		SelectedPersona: "citizen",
	}

	// Upsert is idempotent: running it twice leaves one consistent record.
	for i := 0; i < 2; i++ {
		if err := store.CompleteOnboarding(ctx, u.ID, form, at); err != nil {
			t.Fatalf("CompleteOnboarding #%d failed: %v", i+1, err)
		}
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.OnboardingCompleted || got.OnboardingCompletedAt == nil {
		t.Error("expected onboarding to be marked complete")
	}
	if got.ProfileCompletion != 100 {
		t.Errorf("expected completion 100, got %d", got.ProfileCompletion)
	}
	if len(got.ExpertiseAreas) != 2 {
		t.Errorf("expected deduplicated expertise, got %v", got.ExpertiseAreas)
	}
	if got.Email != "ali@example.com" {
		t.Errorf("email changed: %q", got.Email)
	}
}

// Skipping writes only the onboarding flag.
func TestStore_MarkOnboardingSkipped_OnlyFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ali", "ali@example.com")

	var before bson.M
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&before); err != nil {
		t.Fatalf("read before failed: %v", err)
	}

	if err := store.MarkOnboardingSkipped(ctx, u.ID); err != nil {
		t.Fatalf("MarkOnboardingSkipped failed: %v", err)
	}

	var after bson.M
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&after); err != nil {
		t.Fatalf("read after failed: %v", err)
	}

	if after["onboarding_completed"] != true {
		t.Errorf("expected onboarding_completed=true, got %v", after["onboarding_completed"])
	}
	if len(after) != len(before) {
		t.Errorf("field count changed: before %d, after %d", len(before), len(after))
	}
	for k, v := range before {
		if k == "onboarding_completed" {
			continue
		}
		if after[k] == nil && v != nil {
			t.Errorf("field %q removed", k)
		}
	}
	if after["updated_at"] != before["updated_at"] {
		t.Error("updated_at must not change on skip")
	}

	if err := store.MarkOnboardingSkipped(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing profile, got %v", err)
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ali", "ali@example.com")
	title := " Senior   Engineer "
	lang := "ar-SA"

	got, changed, err := store.UpdateProfile(ctx, u.ID, models.ProfilePatch{JobTitle: &title, PreferredLanguage: &lang})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if got.JobTitle != "Senior Engineer" || got.PreferredLanguage != "ar" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if len(changed) != 2 {
		t.Errorf("expected 2 changed fields, got %v", changed)
	}
	if got.ProfileCompletion != models.WeightFullName+models.WeightJobTitle {
		t.Errorf("unexpected completion %d", got.ProfileCompletion)
	}

	_, changed, err = store.UpdateProfile(ctx, u.ID, models.ProfilePatch{})
	if err != nil || len(changed) != 0 {
		t.Errorf("empty patch: changed=%v err=%v", changed, err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, r := range models.DefaultRoles {
		fixtures.CreateRole(ctx, r)
	}
	u := fixtures.CreateUser(ctx, "Mona", "mona@example.com", "citizen", "municipality_staff")

	f := userstore.NewFetcher(db)
	su, err := f.FetchUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchUser failed: %v", err)
	}
	if su == nil {
		t.Fatal("expected user")
	}
	if su.Persona != "municipality" {
		t.Errorf("expected municipality persona, got %q", su.Persona)
	}
	if !su.HasPermission(models.PermPilotsView) {
		t.Errorf("expected pilots_view, got %v", su.Permissions)
	}
	if su.IsAdmin {
		t.Error("unexpected admin")
	}

	if su, err := f.FetchUser(ctx, "not-an-id"); su != nil || err != nil {
		t.Errorf("malformed id: %+v, %v", su, err)
	}
	if su, err := f.FetchUser(ctx, primitive.NewObjectID().Hex()); su != nil || err != nil {
		t.Errorf("missing user: %+v, %v", su, err)
	}
}

func TestFetcher_DisabledUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Gone", "gone@example.com")
	if _, err := db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"status": "disabled"}}); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	su, err := userstore.NewFetcher(db).FetchUser(ctx, u.ID.Hex())
	if err != nil || su != nil {
		t.Errorf("disabled user: %+v, %v", su, err)
	}
}
