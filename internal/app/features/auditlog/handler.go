// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/store/audit"
	userstore "github.com/dalemusser/innovhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin audit trail.
type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler binds the audit and user stores to db.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
