// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/innovhub/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/innovhub/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/innovhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/innovhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/innovhub/internal/app/features/health"
	languagefeature "github.com/dalemusser/innovhub/internal/app/features/language"
	logoutfeature "github.com/dalemusser/innovhub/internal/app/features/logout"
	mefeature "github.com/dalemusser/innovhub/internal/app/features/me"
	menufeature "github.com/dalemusser/innovhub/internal/app/features/menu"
	onboardingfeature "github.com/dalemusser/innovhub/internal/app/features/onboarding"
	profilefeature "github.com/dalemusser/innovhub/internal/app/features/profile"
	rolerequestsfeature "github.com/dalemusser/innovhub/internal/app/features/rolerequests"
	auditstore "github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/store/oauthstate"
	draftstore "github.com/dalemusser/innovhub/internal/app/store/onboardingdrafts"
	rolerequeststore "github.com/dalemusser/innovhub/internal/app/store/rolerequests"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/aiclient"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/app/system/metrics"
	"github.com/dalemusser/innovhub/internal/app/system/onboarding"
	"github.com/dalemusser/innovhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the shared services (sessions,
// locale, audit, events, AI), applies the global middleware and mounts the
// feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on every request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	loc, err := locale.NewManager(appCfg.DefaultLanguage)
	if err != nil {
		logger.Error("locale init failed", zap.Error(err))
		return nil, err
	}

	ai, err := aiclient.New(context.Background(), aiclient.Config{
		Provider: appCfg.AIProvider,
		APIKey:   appCfg.AIAPIKey,
		Model:    appCfg.AIModel,
		BaseURL:  appCfg.AIBaseURL,
		Timeout:  appCfg.AITimeout,
	}, logger)
	if err != nil {
		logger.Error("ai client init failed", zap.Error(err))
		return nil, err
	}

	var pub events.Publisher = events.Nop{}
	if deps.Redis != nil {
		pub = events.NewRedisPublisher(deps.Redis, logger)
	}

	audit := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Activity: appCfg.AuditLogActivity,
	})

	users := userstore.New(deps.MongoDatabase)
	wizard := onboarding.NewService(onboarding.Deps{
		Profiles: users,
		Requests: rolerequeststore.New(deps.MongoDatabase),
		Drafts:   draftstore.New(deps.MongoDatabase),
		AI:       ai,
		Events:   pub,
		Audit:    audit,
		Log:      logger,
	})

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loc.Middleware)
	// Loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	r.Handle("/metrics", metrics.Handler())

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(
		sessionMgr, errLog, audit, users, oauthstate.New(deps.MongoDatabase), loc,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, secure, logger,
	)
	if !googleHandler.IsConfigured() {
		logger.Warn("Google OAuth not configured; sign-in is unavailable")
	}
	r.Get("/login", googleHandler.ServeLoginPage)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Post-sign-in routing: onboarding or persona landing page
	dashboardHandler := dashboardfeature.NewHandler(logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// JSON API
	r.Route("/api", func(api chi.Router) {
		api.Mount("/me", mefeature.Routes(mefeature.NewHandler()))
		api.Mount("/navigation", menufeature.Routes(menufeature.NewHandler(loc)))
		api.Mount("/locale", languagefeature.Routes(languagefeature.NewHandler(loc, users, pub, errLog, secure, logger)))

		onboardingHandler := onboardingfeature.NewHandler(wizard, errLog, logger)
		onboardingHandler.SuggestLimiter = ratelimit.New(appCfg.AISuggestPerMinute, time.Minute)
		api.Mount("/onboarding", onboardingfeature.Routes(onboardingHandler, sessionMgr))

		profileHandler := profilefeature.NewHandler(deps.MongoDatabase, errLog, audit, pub, loc, secure, logger)
		api.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		rrHandler := rolerequestsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
		api.Mount("/role-requests", rolerequestsfeature.Routes(rrHandler, sessionMgr))
		api.Mount("/admin/role-requests", rolerequestsfeature.AdminRoutes(rrHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
		api.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	// Error responses
	errorsHandler := errorsfeature.NewHandler(errLog)
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
