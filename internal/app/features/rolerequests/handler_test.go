package rolerequests_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/features/rolerequests"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func newTestHandler(t *testing.T, db *mongo.Database) *rolerequests.Handler {
	t.Helper()
	logger := zap.NewNop()
	return rolerequests.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) []models.RoleRequest {
	t.Helper()
	var out struct {
		Requests []models.RoleRequest `json:"requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out.Requests
}

func TestAdminRoutes_Gate(t *testing.T) {
	sm := newSessionManager(t)
	router := rolerequests.AdminRoutes(newTestHandler(t, nil), sm)

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"citizen", testutil.RoleUser("citizen"), http.StatusForbidden},
		{"newcomer", testutil.NewcomerUser(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept", "application/json")
			if tt.user != nil {
				req = testutil.WithUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServeMine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	me := fx.CreateUser(ctx, "Ali Hassan", "ali@example.com")
	other := fx.CreateUser(ctx, "Sara Noor", "sara@example.com")

	now := time.Now().UTC().Truncate(time.Millisecond)
	fx.CreateRoleRequest(ctx, me.ID, "expert", models.RoleRequestPending, now.Add(-2*time.Hour))
	newest := fx.CreateRoleRequest(ctx, me.ID, "provider", models.RoleRequestRejected, now.Add(-time.Hour))
	fx.CreateRoleRequest(ctx, other.ID, "municipality", models.RoleRequestPending, now)

	h := newTestHandler(t, db)
	req := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/mine"),
		&auth.SessionUser{ID: me.ID.Hex(), Name: me.FullName, Persona: "user"})
	rec := httptest.NewRecorder()
	h.ServeMine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode(t, rec)
	if len(got) != 2 {
		t.Fatalf("got %d requests, want 2", len(got))
	}
	if got[0].ID != newest.ID {
		t.Errorf("first = %s, want newest %s", got[0].ID.Hex(), newest.ID.Hex())
	}
	for _, rr := range got {
		if rr.UserID != me.ID {
			t.Errorf("leaked request for user %s", rr.UserID.Hex())
		}
	}
}

func TestServeMine_Unauthenticated(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServeMine(rec, testutil.NewRequest(http.MethodGet, "/mine"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeAdminList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ali Hassan", "ali@example.com")
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		fx.CreateRoleRequest(ctx, u.ID, "expert", models.RoleRequestPending, now.Add(time.Duration(-i)*time.Minute))
	}
	fx.CreateRoleRequest(ctx, u.ID, "provider", models.RoleRequestApproved, now)

	router := rolerequests.AdminRoutes(newTestHandler(t, db), newSessionManager(t))
	reviewer := testutil.NewcomerUser()
	reviewer.Permissions = []string{models.PermRoleRequestsView}

	tests := []struct {
		name   string
		target string
		user   *auth.SessionUser
		code   int
		count  int
	}{
		{"all", "/", testutil.AdminUser(), http.StatusOK, 4},
		{"pending", "/?status=pending", testutil.AdminUser(), http.StatusOK, 3},
		{"approved upper case", "/?status=APPROVED", testutil.AdminUser(), http.StatusOK, 1},
		{"limit", "/?status=pending&limit=2", testutil.AdminUser(), http.StatusOK, 2},
		{"permission holder", "/?status=pending", reviewer, http.StatusOK, 3},
		{"bad status", "/?status=lost", testutil.AdminUser(), http.StatusBadRequest, 0},
		{"bad limit", "/?limit=zero", testutil.AdminUser(), http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(httptest.NewRequest(http.MethodGet, tt.target, nil), tt.user)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.code, rec.Body.String())
			}
			if tt.code != http.StatusOK {
				return
			}
			if got := decode(t, rec); len(got) != tt.count {
				t.Errorf("count = %d, want %d", len(got), tt.count)
			}
		})
	}
}
