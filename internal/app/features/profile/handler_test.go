package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/features/profile"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/innovhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys [][]string
}

func (p *recordingPublisher) Invalidate(_ context.Context, _ string, keys ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, keys)
	return nil
}

func (p *recordingPublisher) Notify(context.Context, events.Notification) error { return nil }

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database, *recordingPublisher) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	loc, err := locale.NewManager("en")
	if err != nil {
		t.Fatalf("locale: %v", err)
	}
	pub := &recordingPublisher{}
	h := profile.NewHandler(db, uierrors.NewErrorLogger(logger), nil, pub, loc, false, logger)
	return h, db, pub
}

func sessionFor(u models.UserProfile) *auth.SessionUser {
	return &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Persona: "user"}
}

func patchRequest(t *testing.T, u *auth.SessionUser, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, u)
}

type response struct {
	Profile *models.UserProfile `json:"profile"`
	Changed []string            `json:"changed"`
	Message string              `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeProfile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeProfile_Authenticated(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	rec := httptest.NewRecorder()
	h.ServeProfile(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/profile"), sessionFor(u)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode(t, rec)
	if got.Profile == nil || got.Profile.Email != "ali@example.com" {
		t.Fatalf("profile = %+v", got.Profile)
	}
	if got.Profile.ProfileCompletion != models.WeightFullName {
		t.Errorf("completion = %d, want %d", got.Profile.ProfileCompletion, models.WeightFullName)
	}
}

func TestServeProfile_Missing(t *testing.T) {
	h, _, _ := newTestHandler(t)

	u := &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: "Ghost"}
	rec := httptest.NewRecorder()
	h.ServeProfile(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/profile"), u))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleUpdate_Success(t *testing.T) {
	h, db, pub := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	rec := httptest.NewRecorder()
	body := `{"job_title":"  Urban   Planner ","bio":"<b>Plans</b> cities.","selected_persona":"citizen"}`
	h.HandleUpdate(rec, patchRequest(t, sessionFor(u), body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode(t, rec)
	if got.Message != "Profile saved." {
		t.Errorf("message = %q", got.Message)
	}
	if got.Profile.JobTitle != "Urban Planner" {
		t.Errorf("job title = %q", got.Profile.JobTitle)
	}
	if got.Profile.Bio != "Plans cities." {
		t.Errorf("bio = %q", got.Profile.Bio)
	}
	if len(got.Changed) != 3 {
		t.Errorf("changed = %v, want 3 fields", got.Changed)
	}

	stored, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.SelectedPersona != "citizen" || stored.JobTitle != "Urban Planner" {
		t.Errorf("stored = %+v", stored)
	}
	if stored.FullName != "Ali Hassan" {
		t.Errorf("absent field changed: full name = %q", stored.FullName)
	}

	if len(pub.keys) != 1 {
		t.Fatalf("invalidations = %v", pub.keys)
	}
	if strings.Join(pub.keys[0], ",") != events.KeyProfile+","+events.KeyNavigation {
		t.Errorf("keys = %v", pub.keys[0])
	}
}

func TestHandleUpdate_EmptyPatch(t *testing.T) {
	h, db, pub := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, patchRequest(t, sessionFor(u), `{}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec); got.Message != "" || len(got.Changed) != 0 {
		t.Errorf("empty patch reported changes: %+v", got)
	}
	if len(pub.keys) != 0 {
		t.Errorf("empty patch published %v", pub.keys)
	}
}

func TestHandleUpdate_LanguageSetsCookie(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, patchRequest(t, sessionFor(u), `{"preferred_language":"ar"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == locale.CookieName && c.Value == "ar" {
			found = true
		}
	}
	if !found {
		t.Error("language cookie not set")
	}
}

func TestHandleUpdate_Validation(t *testing.T) {
	h, db, pub := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank name", `{"full_name":"   "}`, "full_name"},
		{"admin persona", `{"selected_persona":"admin"}`, "selected_persona"},
		{"bad language", `{"preferred_language":"fr"}`, "preferred_language"},
		{"too many expertise areas", `{"expertise_areas":["a","b","c","d","e","f"]}`, "expertise_areas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleUpdate(rec, patchRequest(t, sessionFor(u), tt.body))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var body uierrors.Body
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := body.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", body.Fields, tt.field)
			}
		})
	}
	if len(pub.keys) != 0 {
		t.Errorf("rejected patches published %v", pub.keys)
	}
}

func TestHandleUpdate_DuplicateTagsCountOnce(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	rec := httptest.NewRecorder()
	body := `{"expertise_areas":["Water","water","Energy","Transport","Health","Waste"]}`
	h.HandleUpdate(rec, patchRequest(t, sessionFor(u), body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	want := []string{"Water", "Energy", "Transport", "Health", "Waste"}
	if strings.Join(stored.ExpertiseAreas, ",") != strings.Join(want, ",") {
		t.Errorf("expertise = %v, want %v", stored.ExpertiseAreas, want)
	}
}

func TestHandleUpdate_BadJSON(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ali Hassan", "ali@example.com")

	for _, body := range []string{`{`, `{"email":"x@y.z"}`} {
		rec := httptest.NewRecorder()
		h.HandleUpdate(rec, patchRequest(t, sessionFor(u), body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}
