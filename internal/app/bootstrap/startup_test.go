package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/innovhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "innovhub",
		AIProvider:       "none",
		DefaultLanguage:  "en",
		AuditLogAuth:     "all",
		AuditLogActivity: "db",

		AISuggestPerMinute: 5,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"empty mongo uri", func(c *AppConfig) { c.MongoURI = "" }, true},
		{"unknown ai provider", func(c *AppConfig) { c.AIProvider = "oracle" }, true},
		{"http provider without base url", func(c *AppConfig) { c.AIProvider = "http" }, true},
		{"http provider with base url", func(c *AppConfig) {
			c.AIProvider = "http"
			c.AIBaseURL = "http://localhost:11434/v1"
		}, false},
		{"genai provider", func(c *AppConfig) { c.AIProvider = "genai" }, false},
		{"arabic default", func(c *AppConfig) { c.DefaultLanguage = "ar" }, false},
		{"unsupported default language", func(c *AppConfig) { c.DefaultLanguage = "fr" }, true},
		{"zero suggest limit", func(c *AppConfig) { c.AISuggestPerMinute = 0 }, true},
		{"bad audit setting", func(c *AppConfig) { c.AuditLogActivity = "sometimes" }, true},
		{"bad admin email", func(c *AppConfig) { c.AdminEmail = "not-an-email" }, true},
		{"good admin email", func(c *AppConfig) { c.AdminEmail = "root@example.com" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStartup_SeedsRolesAndTimeouts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	t.Cleanup(timeouts.Reset)

	deps := DBDeps{MongoDatabase: db}
	cfg := validAppConfig()
	cfg.TimeoutShort = 2 * time.Second
	cfg.AITimeout = 20 * time.Second

	require.NoError(t, Startup(ctx, &config.CoreConfig{}, cfg, deps, testLogger()))
	require.NoError(t, Startup(ctx, &config.CoreConfig{}, cfg, deps, testLogger()), "Startup must be idempotent")
	require.NotNil(t, backgroundJobs)
	backgroundJobs.Stop()

	n, err := db.Collection("roles").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.DefaultRoles)), n)

	assert.Equal(t, 2*time.Second, timeouts.Short())
	assert.Equal(t, 20*time.Second, timeouts.AI())
	assert.Equal(t, timeouts.DefaultMedium, timeouts.Medium())
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	require.NoError(t, ensureAdmin(ctx, deps, " Root@Example.com ", testLogger()))

	var user models.UserProfile
	require.NoError(t, db.Collection("users").FindOne(ctx, bson.M{"email": "root@example.com"}).Decode(&user))
	assert.Equal(t, []string{"admin"}, user.Roles)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.False(t, user.OnboardingCompleted)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := testutil.NewFixtures(t, db).CreateUser(ctx, "Sara Noor", "sara@example.com", "researcher")

	deps := DBDeps{MongoDatabase: db}
	require.NoError(t, ensureAdmin(ctx, deps, "sara@example.com", testLogger()))
	require.NoError(t, ensureAdmin(ctx, deps, "sara@example.com", testLogger()))

	var user models.UserProfile
	require.NoError(t, db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user))
	assert.ElementsMatch(t, []string{"researcher", "admin"}, user.Roles)
	assert.Equal(t, "Sara Noor", user.FullName)
}

func TestEnsureAdmin_EmptyEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, ensureAdmin(ctx, DBDeps{MongoDatabase: db}, "", testLogger()))

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
