package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventOnboardingCompleted,
		UserID:    &userID,
		IP:        "192.168.1.1",
		Success:   true,
		Details:   map[string]string{"persona": "citizen"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID, Limit: 10})
	if err != nil {
		t.Fatalf("Query by user failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() || events[0].Timestamp.IsZero() {
		t.Error("expected ID and timestamp to be set")
	}
	if events[0].Details["persona"] != "citizen" {
		t.Errorf("details = %v", events[0].Details)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	old := time.Now().UTC().Add(-48 * time.Hour)
	for _, e := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &userID, Timestamp: old},
		{Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: &userID},
		{Category: audit.CategoryActivity, EventType: audit.EventOnboardingSkipped, UserID: &userID},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	auth, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(auth) != 2 {
		t.Errorf("auth events = %d, want 2", len(auth))
	}
	if len(auth) == 2 && auth[0].EventType != audit.EventLogout {
		t.Errorf("expected newest first, got %s", auth[0].EventType)
	}

	since := time.Now().UTC().Add(-time.Hour)
	recent, err := store.Query(ctx, audit.QueryFilter{UserID: &userID, Since: &since})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent events = %d, want 2", len(recent))
	}
}

func TestStore_Query_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.Query(ctx, audit.QueryFilter{Limit: 3})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}

func TestStore_CountAndPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		e := audit.Event{
			Category:  audit.CategoryActivity,
			EventType: audit.EventProfileUpdated,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	until := base.Add(2 * time.Minute)
	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryActivity, Until: &until})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	page, err := store.Query(ctx, audit.QueryFilter{Limit: 2, Skip: 4})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("last page = %d events, want 1", len(page))
	}
	if !page[0].Timestamp.Equal(base.Truncate(time.Millisecond)) {
		t.Errorf("last page should hold the oldest event, got %v", page[0].Timestamp)
	}
}
