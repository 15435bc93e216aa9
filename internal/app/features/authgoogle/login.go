// internal/app/features/authgoogle/login.go
package authgoogle

import (
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/query"
)

// loginErrors lists the codes the OAuth flow redirects back with.
var loginErrors = map[string]bool{
	"google_not_configured": true,
	"google_denied":         true,
	"invalid_state":         true,
	"invalid_code":          true,
	"token_exchange":        true,
	"account_disabled":      true,
	"internal":              true,
}

type loginError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginResponse struct {
	Configured bool        `json:"configured"`
	LoginURL   string      `json:"login_url"`
	Error      *loginError `json:"error,omitempty"`
}

// ServeLoginPage handles GET /login. It tells the client where to start
// sign-in and, after a failed attempt, why it failed in the request language.
func (h *Handler) ServeLoginPage(w http.ResponseWriter, r *http.Request) {
	start := "/auth/google"
	if ret := navigation.SafeBackURL(r, navigation.PostLoginBackURL("")); ret != "" {
		start += "?return=" + url.QueryEscape(ret)
	}

	resp := loginResponse{Configured: h.IsConfigured(), LoginURL: start}
	status := http.StatusOK
	if code := query.Get(r, "error"); code != "" {
		if !loginErrors[code] {
			code = "internal"
		}
		resp.Error = &loginError{Code: code, Message: h.translate(r, "login.error."+code)}
		status = http.StatusUnauthorized
	}
	uierrors.WriteJSON(w, status, resp)
}

func (h *Handler) translate(r *http.Request, key string) string {
	lang := locale.From(r.Context()).Lang
	if h.Locale == nil {
		return key
	}
	return h.Locale.Translate(lang, key)
}
