// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
)

// Handler serves the endpoints the auth middleware redirects to.
// No DB needed; it only writes localized JSON.
type Handler struct {
	ErrLog *ErrorLogger
}

// NewHandler constructs an errors Handler.
func NewHandler(errLog *ErrorLogger) *Handler {
	return &Handler{ErrLog: errLog}
}

// Forbidden answers "access denied".
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.ErrLog.Write(w, r, http.StatusForbidden, "error.forbidden", nil)
}

// Unauthorized answers "sign in required".
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.ErrLog.Write(w, r, http.StatusUnauthorized, "error.unauthorized", nil)
}

// NotFound is the router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.ErrLog.Write(w, r, http.StatusNotFound, "error.not_found", nil)
}
