// internal/app/features/errors/logger.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/innovhub/internal/app/system/inputval"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error  string            `json:"error"`            // localized message
	Code   string            `json:"code"`             // message key
	Fields map[string]string `json:"fields,omitempty"` // field -> localized message
}

// ErrorLogger logs a failure and writes the localized error body.
// A nil *ErrorLogger still writes responses; it just does not log.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) logger() *zap.Logger {
	if e == nil || e.log == nil {
		return zap.NewNop()
	}
	return e.log
}

// Write sends status with the message for key in the request locale.
// fields maps form fields to message keys and is translated the same way.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, status int, key string, fields map[string]string) {
	l := locale.From(r.Context())
	body := Body{Error: l.T(key), Code: key}
	if len(fields) > 0 {
		body.Fields = make(map[string]string, len(fields))
		for f, k := range fields {
			body.Fields[f] = l.T(k)
		}
	}
	WriteJSON(w, status, body)
}

// LogBadRequest logs at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, key string) {
	e.logger().Warn(msg, zap.String("path", r.URL.Path), zap.Error(err))
	e.Write(w, r, http.StatusBadRequest, key, nil)
}

// LogServerError logs at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, key string) {
	e.logger().Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	e.Write(w, r, http.StatusInternalServerError, key, nil)
}

// LogUpstreamError logs a failed dependency call and answers 502.
func (e *ErrorLogger) LogUpstreamError(w http.ResponseWriter, r *http.Request, msg string, err error, key string) {
	e.logger().Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	e.Write(w, r, http.StatusBadGateway, key, nil)
}

// Validation answers 422 with per-field messages. It reports false, writing
// nothing, when err carries no field errors.
func (e *ErrorLogger) Validation(w http.ResponseWriter, r *http.Request, err error) bool {
	fields := inputval.FieldErrors(err)
	if fields == nil {
		return false
	}
	e.logger().Debug("validation failed", zap.String("path", r.URL.Path), zap.Any("fields", fields))
	e.Write(w, r, http.StatusUnprocessableEntity, "error.validation", fields)
	return true
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
