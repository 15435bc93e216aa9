// Package locale resolves the request language, its text direction, and
// translates message keys from the embedded catalogs.
//
// The resolved locale travels in the request context; there is no global
// "current language".
package locale

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/normalize"
)

const (
	LangEN = "en"
	LangAR = "ar"

	// CookieName holds an explicit language choice.
	CookieName = "lang"
)

// Direction values.
const (
	LTR = "ltr"
	RTL = "rtl"
)

var rtlLanguages = map[string]bool{LangAR: true}

//go:embed locales/*.json
var embedded embed.FS

// Translator looks up a message key in a language.
type Translator interface {
	Translate(lang, key string) string
}

// Manager holds the loaded catalogs.
type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	supported       []string
}

// NewManager loads the catalogs embedded in the binary.
func NewManager(defaultLanguage string) (*Manager, error) {
	return NewManagerFS(embedded, "locales", defaultLanguage)
}

// NewManagerFS loads every <lang>.json under dir. Both en and ar must exist.
func NewManagerFS(fsys fs.FS, dir, defaultLanguage string) (*Manager, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	m := &Manager{locales: map[string]map[string]string{}}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(strings.ToLower(entry.Name()), ".json")
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", lang)
		}
		m.locales[lang] = messages
		m.supported = append(m.supported, lang)
	}

	for _, required := range []string{LangEN, LangAR} {
		if _, ok := m.locales[required]; !ok {
			return nil, fmt.Errorf("required locale %q missing", required)
		}
	}
	sort.Strings(m.supported)

	def := normalize.Language(defaultLanguage)
	if !m.isSupported(def) {
		def = LangEN
	}
	m.defaultLanguage = def
	return m, nil
}

// DefaultLanguage returns the configured fallback language.
func (m *Manager) DefaultLanguage() string { return m.defaultLanguage }

// SupportedLanguages returns a copy of the loaded language codes.
func (m *Manager) SupportedLanguages() []string {
	out := make([]string, len(m.supported))
	copy(out, m.supported)
	return out
}

// IsSupported reports whether raw normalizes to a loaded language.
func (m *Manager) IsSupported(raw string) bool {
	return m.isSupported(normalize.Language(raw))
}

// NormalizeLanguage maps raw to a supported language or the default.
func (m *Manager) NormalizeLanguage(raw string) string {
	lang := normalize.Language(raw)
	if m.isSupported(lang) {
		return lang
	}
	return m.defaultLanguage
}

// DetectFromAcceptLanguage returns the first supported entry of an
// Accept-Language header in listed order, or the default.
func (m *Manager) DetectFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if lang := normalize.Language(token); m.isSupported(lang) {
			return lang
		}
	}
	return m.defaultLanguage
}

// Translate returns the message for key in lang, falling back to the
// default language and then to the key itself.
func (m *Manager) Translate(lang, key string) string {
	for _, l := range []string{m.NormalizeLanguage(lang), m.defaultLanguage} {
		if v, ok := m.locales[l][key]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return key
}

func (m *Manager) isSupported(lang string) bool {
	if lang == "" {
		return false
	}
	_, ok := m.locales[lang]
	return ok
}

// Direction returns rtl for right-to-left languages, ltr otherwise.
func Direction(lang string) string {
	if rtlLanguages[normalize.Language(lang)] {
		return RTL
	}
	return LTR
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// Locale is the per-request language context.
type Locale struct {
	Lang string
	Dir  string
	tr   Translator
}

// T translates key in this locale. A Locale without a translator returns key.
func (l Locale) T(key string) string {
	if l.tr == nil {
		return key
	}
	return l.tr.Translate(l.Lang, key)
}

type ctxKey struct{}

// WithLocale returns ctx carrying l.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the request locale, or English/LTR when none was set.
func From(ctx context.Context) Locale {
	if l, ok := ctx.Value(ctxKey{}).(Locale); ok {
		return l
	}
	return Locale{Lang: LangEN, Dir: LTR}
}

// Resolve picks the language for r: cookie, then Accept-Language, then the
// default.
func (m *Manager) Resolve(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && m.IsSupported(c.Value) {
		return m.NormalizeLanguage(c.Value)
	}
	return m.DetectFromAcceptLanguage(r.Header.Get("Accept-Language"))
}

// Locale builds the context value for lang.
func (m *Manager) Locale(lang string) Locale {
	lang = m.NormalizeLanguage(lang)
	return Locale{Lang: lang, Dir: Direction(lang), tr: m}
}

// Middleware injects the resolved Locale into every request and sets
// Content-Language on the response.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := m.Locale(m.Resolve(r))
		w.Header().Set("Content-Language", l.Lang)
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), l)))
	})
}

// SetCookie stores an explicit language choice for a year.
func (m *Manager) SetCookie(w http.ResponseWriter, lang string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.NormalizeLanguage(lang),
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().AddDate(1, 0, 0),
	})
}
