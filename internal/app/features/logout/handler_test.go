package logout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/innovhub/internal/app/features/logout"
	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type memEvents struct{ events []audit.Event }

func (m *memEvents) Log(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	// A nil audit logger is a no-op.
	return logout.NewHandler(newSessionManager(t), nil, zap.NewNop())
}

func deletedSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
			return
		}
	}
	t.Error("expected session cookie to be set for deletion")
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
	deletedSessionCookie(t, rec)
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestServeLogout_JSON(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["redirect"] != "/" {
		t.Errorf("redirect = %q", body["redirect"])
	}
	deletedSessionCookie(t, rec)
}

func TestServeLogout_WithExistingSession_Audited(t *testing.T) {
	sm := newSessionManager(t)
	events := &memEvents{}
	handler := logout.NewHandler(sm, auditlog.New(events, zap.NewNop(), auditlog.Config{}), zap.NewNop())

	setup := httptest.NewRecorder()
	if err := sm.SignIn(setup, httptest.NewRequest("GET", "/setup", nil), "64b000000000000000000001"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range setup.Result().Cookies() {
		req.AddCookie(c)
	}
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "64b000000000000000000001"})
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	deletedSessionCookie(t, rec)
	if len(events.events) != 1 || events.events[0].EventType != audit.EventLogout {
		t.Errorf("expected one logout event, got %+v", events.events)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	sm := newSessionManager(t)
	router := logout.Routes(logout.NewHandler(sm, nil, zap.NewNop()), sm)

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
