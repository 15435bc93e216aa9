// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything specific
// to InnovHub lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: innovhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// BaseURL is the public origin used for the OAuth callback.
	BaseURL string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Redis (cache invalidation and notification events). Blank address
	// disables publishing.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI inference for onboarding suggestions
	AIProvider string // "none", "genai" or "http"
	AIAPIKey   string
	AIModel    string
	AIBaseURL  string // only used by the http provider
	AITimeout  time.Duration

	// AISuggestPerMinute caps suggestion requests per user.
	AISuggestPerMinute int

	// DefaultLanguage is used when neither cookie nor Accept-Language match.
	DefaultLanguage string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth     string
	AuditLogActivity string

	// Request timeouts for store calls
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// AdminEmail is granted the admin role on startup (created if missing).
	AdminEmail string
}
