// Package navigation builds the permission-filtered menu and provides
// helpers for safe redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix. If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are rejected to avoid sending users back into a flow
	// they just left (e.g. "/onboarding", "/auth").
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates the "return" value from the query or
// form. Only local paths pass (no open redirects).
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}

// PostLoginBackURL is used after sign-in: any local page except the auth and
// onboarding flows themselves.
func PostLoginBackURL(fallback string) BackURLOptions {
	return BackURLOptions{
		ExcludedSubpaths: []string{"/auth/", "/login", "/logout", "/onboarding"},
		Fallback:         fallback,
	}
}
