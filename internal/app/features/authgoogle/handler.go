// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/navigation"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds the time between /auth/google and the callback.
const stateTTL = 10 * time.Minute

// UserStore finds the profile for a Google identity, creating it on first sign-in.
type UserStore interface {
	FindOrCreate(ctx context.Context, id userstore.Identity) (*models.UserProfile, bool, error)
}

// StateStore holds one-time OAuth state tokens.
type StateStore interface {
	Save(ctx context.Context, st oauthstate.State) error
	Consume(ctx context.Context, state string) (*oauthstate.State, error)
}

// GoogleUser is the subset of Google's userinfo response we use.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Locale        string `json:"locale"`
}

// IdentityProvider turns an authorization code into a Google identity.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identity(ctx context.Context, code string) (*GoogleUser, error)
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Users      UserStore
	StateStore StateStore
	Locale     *locale.Manager
	Provider   IdentityProvider

	// SecureCookies marks the language cookie Secure.
	SecureCookies bool

	clientID     string
	clientSecret string
}

// NewHandler creates a new Google OAuth handler. baseURL is the public
// origin used to build the callback URL.
func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	users UserStore,
	stateStore StateStore,
	loc *locale.Manager,
	clientID, clientSecret, baseURL string,
	secureCookies bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Users:         users,
		StateStore:    stateStore,
		Locale:        loc,
		SecureCookies: secureCookies,
		Provider: &googleProvider{cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}},
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.clientID != "" && h.clientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := navigation.SafeBackURL(r, navigation.PostLoginBackURL(""))
	lang := locale.From(r.Context()).Lang

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	now := time.Now().UTC()
	if err := h.StateStore.Save(ctx, oauthstate.State{
		State:     state,
		ReturnURL: returnURL,
		Lang:      lang,
		ExpiresAt: now.Add(stateTTL),
		CreatedAt: now,
	}); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.Provider.AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL),
		zap.String("lang", lang))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Validates state, exchanges the code, finds or creates the profile, and       |
| signs the user in.                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := auditlog.MetaFrom(r)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	stateParam := r.URL.Query().Get("state")
	if stateParam == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	st, err := h.StateStore.Consume(ctxTimeout, stateParam)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if st == nil {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	gu, err := h.Provider.Identity(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	lookupCtx, lookupCancel := context.WithTimeout(ctx, timeouts.Short())
	defer lookupCancel()

	user, created, err := h.Users.FindOrCreate(lookupCtx, userstore.Identity{
		Email:      gu.Email,
		Name:       gu.Name,
		Subject:    gu.ID,
		AuthMethod: "google",
		Language:   st.Lang,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDisabled) {
			h.Log.Info("Google OAuth: user disabled", zap.String("email", gu.Email))
			h.AuditLog.LoginFailed(ctx, meta, gu.Email, "disabled")
			http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
			return
		}
		h.Log.Error("failed to find or create user", zap.Error(err))
		h.AuditLog.LoginFailed(ctx, meta, gu.Email, "lookup_failed")
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if created {
		h.Log.Info("profile created on first sign-in", zap.String("user_id", user.ID.Hex()))
		h.AuditLog.UserCreated(ctx, meta, user.ID, "google")
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.AuditLog.LoginSuccess(ctx, meta, user.ID, "google")
	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", user.ID.Hex()),
		zap.Bool("created", created))

	// The stored preference wins over the language the flow started in.
	if h.Locale != nil {
		lang := user.PreferredLanguage
		if lang == "" {
			lang = st.Lang
		}
		if lang != "" {
			h.Locale.SetCookie(w, lang, h.SecureCookies)
		}
	}

	http.Redirect(w, r, urlutil.SafeReturn(st.ReturnURL, "", "/dashboard"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Google provider                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleProvider struct {
	cfg *oauth2.Config
}

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Identity exchanges code for a token and fetches the userinfo document.
func (p *googleProvider) Identity(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := p.cfg.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email")
	}
	return &info, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
