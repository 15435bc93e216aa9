// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled).
type Config struct {
	// Auth covers sign-in, sign-out and first-sign-in profile creation.
	Auth string
	// Activity covers onboarding, role requests and profile edits.
	Activity string
}

// EventStore persists audit events.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Meta is the request context recorded with each event.
type Meta struct {
	IP        string
	UserAgent string
}

// MetaFrom extracts Meta from r. Proxy headers win over RemoteAddr.
func MetaFrom(r *http.Request) Meta {
	return Meta{IP: ratelimit.ClientIP(r), UserAgent: r.UserAgent()}
}

// Logger writes audit events to MongoDB and/or zap per Config.
// A nil *Logger is a no-op.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryActivity:
		setting = l.config.Activity
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func oidPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, m Meta, userID primitive.ObjectID, authMethod string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
		Details:   map[string]string{"auth_method": authMethod},
	})
}

// LoginFailed logs a rejected sign-in attempt.
func (l *Logger) LoginFailed(ctx context.Context, m Meta, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            m.IP,
		UserAgent:     m.UserAgent,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// UserCreated logs profile creation at first sign-in.
func (l *Logger) UserCreated(ctx context.Context, m Meta, userID primitive.ObjectID, authMethod string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserCreated,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
		Details:   map[string]string{"auth_method": authMethod},
	})
}

// Logout logs a sign-out. userIDStr comes from the session and may be malformed.
func (l *Logger) Logout(ctx context.Context, m Meta, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
	})
}

// --- Activity Events ---

// OnboardingCompleted logs a finished wizard.
func (l *Logger) OnboardingCompleted(ctx context.Context, m Meta, userID primitive.ObjectID, selectedPersona string, completion int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventOnboardingCompleted,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
		Details: map[string]string{
			"selected_persona":   selectedPersona,
			"profile_completion": strconv.Itoa(completion),
		},
	})
}

// OnboardingSkipped logs a wizard exit via skip.
func (l *Logger) OnboardingSkipped(ctx context.Context, m Meta, userID primitive.ObjectID, fromStep string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventOnboardingSkipped,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
		Details:   map[string]string{"from_step": fromStep},
	})
}

// RoleRequested logs a role request attempt. A failed insert is recorded
// with success=false.
func (l *Logger) RoleRequested(ctx context.Context, m Meta, userID primitive.ObjectID, requested string, err error) {
	e := audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventRoleRequested,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   err == nil,
		Details:   map[string]string{"requested_persona": requested},
	}
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, e)
}

// ProfileUpdated logs a profile edit with the changed field names.
func (l *Logger) ProfileUpdated(ctx context.Context, m Meta, userID primitive.ObjectID, fields []string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventProfileUpdated,
		UserID:    oidPtr(userID),
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Success:   true,
		Details:   map[string]string{"fields_changed": strings.Join(fields, ",")},
	})
}
