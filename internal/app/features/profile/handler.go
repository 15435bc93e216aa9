// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/system/auditlog"
	"github.com/dalemusser/innovhub/internal/app/system/events"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all user profile handlers.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Events   events.Publisher
	Locale   *locale.Manager

	// SecureCookies marks the language cookie Secure.
	SecureCookies bool
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
// A nil publisher disables cache invalidation.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, pub events.Publisher, loc *locale.Manager, secureCookies bool, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{
		DB:            db,
		Log:           logger,
		ErrLog:        errLog,
		AuditLog:      audit,
		Events:        pub,
		Locale:        loc,
		SecureCookies: secureCookies,
	}
}
