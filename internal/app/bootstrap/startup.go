// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/innovhub/internal/app/store/oauthstate"
	draftstore "github.com/dalemusser/innovhub/internal/app/store/onboardingdrafts"
	rolestore "github.com/dalemusser/innovhub/internal/app/store/roles"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"github.com/dalemusser/innovhub/internal/app/system/normalize"
	"github.com/dalemusser/innovhub/internal/app/system/tasks"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// backgroundJobs is started by Startup and stopped by Shutdown.
var backgroundJobs *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// timeouts, seeds the default roles, ensures the admin account and starts the
// expiry cleanup jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		AI:     appCfg.AITimeout,
	})
	t := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", t.Ping),
		zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium),
		zap.Duration("ai", t.AI))

	n, err := rolestore.New(deps.MongoDatabase).SeedDefaults(ctx, models.DefaultRoles)
	if err != nil {
		logger.Error("seeding default roles failed", zap.Error(err))
		return err
	}
	if n > 0 {
		logger.Info("seeded default roles", zap.Int("inserted", n))
	}

	if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
		return err
	}

	if backgroundJobs != nil {
		backgroundJobs.Stop()
	}
	backgroundJobs = tasks.NewRunner(logger, 30*time.Second,
		tasks.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
		tasks.DraftCleanupJob(draftstore.New(deps.MongoDatabase), logger),
	)
	backgroundJobs.Start()
	return nil
}

// ensureAdmin grants the admin role to email, creating the profile when it
// does not exist yet. The first Google sign-in links the provider subject.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)
	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := users.Create(ctx, models.UserProfile{
			Email:      email,
			FullName:   "Administrator",
			AuthMethod: "google",
			Roles:      []string{"admin"},
		})
		if err != nil {
			return fmt.Errorf("create admin %s: %w", email, err)
		}
		logger.Info("created admin profile", zap.String("email", email), zap.String("user_id", created.ID.Hex()))
		return nil
	case err != nil:
		return fmt.Errorf("load admin %s: %w", email, err)
	}

	for _, r := range u.Roles {
		if normalize.Role(r) == "admin" {
			return nil
		}
	}
	if _, err := deps.MongoDatabase.Collection("users").UpdateByID(ctx, u.ID, bson.M{
		"$addToSet": bson.M{"roles": "admin"},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}); err != nil {
		return fmt.Errorf("promote admin %s: %w", email, err)
	}
	logger.Info("promoted profile to admin", zap.String("email", email), zap.String("user_id", u.ID.Hex()))
	return nil
}
