// internal/app/features/rolerequests/handler.go
package rolerequests

import (
	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxLimit caps the admin list page size.
const MaxLimit = 200

// Handler serves role request listings.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Log: logger}
}
