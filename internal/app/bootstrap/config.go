// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for InnovHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: INNOVHUB_MONGO_URI, INNOVHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "innovhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "innovhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 24h, 720h)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL for OAuth callbacks"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Redis
	{Name: "redis_addr", Default: "", Desc: "Redis address for invalidation events (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// AI inference
	{Name: "ai_provider", Default: "none", Desc: "AI provider: 'none', 'genai' or 'http'"},
	{Name: "ai_api_key", Default: "", Desc: "AI provider API key"},
	{Name: "ai_model", Default: "gemini-2.0-flash", Desc: "AI model name"},
	{Name: "ai_base_url", Default: "", Desc: "Base URL of an OpenAI-compatible endpoint (http provider)"},
	{Name: "ai_timeout", Default: "45s", Desc: "Timeout for one AI request"},
	{Name: "ai_suggest_per_minute", Default: 5, Desc: "Max onboarding suggestion requests per user per minute"},

	{Name: "default_language", Default: "en", Desc: "Fallback UI language: 'en' or 'ar'"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_activity", Default: "all", Desc: "Activity event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for lists and multi-step writes"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email granted the admin role on startup (created if missing)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// INNOVHUB_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INNOVHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		BaseURL: strings.TrimRight(appValues.String("base_url"), "/"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		// Redis
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		// AI
		AIProvider: strings.ToLower(strings.TrimSpace(appValues.String("ai_provider"))),
		AIAPIKey:   appValues.String("ai_api_key"),
		AIModel:    appValues.String("ai_model"),
		AIBaseURL:  appValues.String("ai_base_url"),
		AITimeout:  appValues.Duration("ai_timeout", 45*time.Second),

		AISuggestPerMinute: appValues.Int("ai_suggest_per_minute"),

		DefaultLanguage: appValues.String("default_language"),

		// Audit logging
		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogActivity: appValues.String("audit_log_activity"),

		// Timeouts
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

var auditSettings = map[string]bool{"": true, "all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// It checks the MongoDB URI format, the AI provider, the default language
// and the audit settings so configuration errors surface before connecting.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if !aiclient.ValidProvider(appCfg.AIProvider) {
		return fmt.Errorf("ai_provider must be 'none', 'genai' or 'http', got %q", appCfg.AIProvider)
	}
	if appCfg.AIProvider == aiclient.ProviderHTTP && appCfg.AIBaseURL == "" {
		return fmt.Errorf("ai_provider 'http' requires ai_base_url")
	}

	if appCfg.AISuggestPerMinute < 1 {
		return fmt.Errorf("ai_suggest_per_minute must be at least 1")
	}

	switch appCfg.DefaultLanguage {
	case locale.LangEN, locale.LangAR:
	default:
		return fmt.Errorf("default_language must be 'en' or 'ar', got %q", appCfg.DefaultLanguage)
	}

	if !auditSettings[appCfg.AuditLogAuth] || !auditSettings[appCfg.AuditLogActivity] {
		return fmt.Errorf("audit_log_auth and audit_log_activity must be 'all', 'db', 'log' or 'off'")
	}

	if appCfg.AdminEmail != "" && !inputval.IsValidEmail(appCfg.AdminEmail) {
		return fmt.Errorf("admin_email %q is not a valid address", appCfg.AdminEmail)
	}

	return nil
}
