package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	events []audit.Event
}

func (m *memStore) Log(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, auditlog.Meta{}, primitive.NewObjectID(), "google")
	logger.Logout(ctx, auditlog.Meta{}, primitive.NewObjectID().Hex())
}

func TestLogger_ConfigRouting(t *testing.T) {
	tests := []struct {
		name     string
		setting  string
		wantDB   int
		wantLogs int
	}{
		{"off", "off", 0, 0},
		{"db", "db", 1, 0},
		{"log", "log", 0, 1},
		{"all", "all", 1, 1},
		{"empty means all", "", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			store := &memStore{}
			logger := auditlog.New(store, zap.New(core), auditlog.Config{Activity: tt.setting})

			logger.OnboardingSkipped(context.Background(), auditlog.Meta{IP: "10.0.0.1"}, primitive.NewObjectID(), "welcome")

			if len(store.events) != tt.wantDB {
				t.Errorf("db events = %d, want %d", len(store.events), tt.wantDB)
			}
			if logs.Len() != tt.wantLogs {
				t.Errorf("zap entries = %d, want %d", logs.Len(), tt.wantLogs)
			}
		})
	}
}

func TestLogger_CategoriesIndependent(t *testing.T) {
	store := &memStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Activity: "db"})
	ctx := context.Background()
	userID := primitive.NewObjectID()

	logger.LoginSuccess(ctx, auditlog.Meta{}, userID, "google")
	logger.OnboardingCompleted(ctx, auditlog.Meta{}, userID, "citizen", 25)

	if len(store.events) != 1 || store.events[0].EventType != audit.EventOnboardingCompleted {
		t.Fatalf("events = %+v", store.events)
	}
	if store.events[0].Details["profile_completion"] != "25" {
		t.Errorf("details = %v", store.events[0].Details)
	}
}

func TestLogger_RoleRequestedFailure(t *testing.T) {
	store := &memStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Activity: "db"})

	logger.RoleRequested(context.Background(), auditlog.Meta{}, primitive.NewObjectID(), "expert", errors.New("insert failed"))

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	e := store.events[0]
	if e.Success || e.FailureReason != "insert failed" {
		t.Errorf("event = %+v", e)
	}
}

func TestLogger_Logout_InvalidID(t *testing.T) {
	store := &memStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	logger.Logout(context.Background(), auditlog.Meta{}, "not-an-id")

	if len(store.events) != 1 || store.events[0].UserID != nil {
		t.Errorf("events = %+v", store.events)
	}
}

func TestMetaFrom(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"x-forwarded-for first hop", "203.0.113.195, 70.41.3.18", "192.168.1.1", "127.0.0.1:1", "203.0.113.195"},
		{"x-real-ip", "", "192.168.1.100", "127.0.0.1:1", "192.168.1.100"},
		{"remote addr port stripped", "", "", "10.0.0.5:12345", "10.0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			req.RemoteAddr = tt.remote
			req.Header.Set("User-Agent", "TestBrowser/1.0")

			m := auditlog.MetaFrom(req)
			if m.IP != tt.want {
				t.Errorf("IP = %q, want %q", m.IP, tt.want)
			}
			if m.UserAgent != "TestBrowser/1.0" {
				t.Errorf("UserAgent = %q", m.UserAgent)
			}
		})
	}
}

func TestLogger_WithMongoStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Activity: "db"})
	logger.ProfileUpdated(ctx, auditlog.Meta{IP: "1.2.3.4"}, userID, []string{"bio", "job_title"})

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID, Limit: 10})
	if err != nil {
		t.Fatalf("Query by user failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Details["fields_changed"] != "bio,job_title" {
		t.Errorf("details = %v", events[0].Details)
	}
}
