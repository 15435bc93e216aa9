// Package aiclient calls an external AI inference service with a prompt and
// an optional JSON response schema and returns the structured result.
//
// The schema is advisory: it is passed to the provider, but the returned
// JSON is only checked for well-formedness. Calls are never retried.
package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/innovhub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Provider names accepted in configuration.
const (
	ProviderNone  = "none"
	ProviderGenAI = "genai"
	ProviderHTTP  = "http"
)

var (
	// ErrNotConfigured is returned by the none provider.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrEmptyResponse means the provider answered without content.
	ErrEmptyResponse = errors.New("ai provider returned no content")
	// ErrInvalidJSON means the content could not be parsed as JSON.
	ErrInvalidJSON = errors.New("ai provider returned invalid json")
)

// Request is one inference call.
type Request struct {
	Prompt             string
	SystemPrompt       string
	ResponseJSONSchema map[string]any
}

// Response carries the provider's JSON output.
type Response struct {
	Success bool
	Data    json.RawMessage
}

// Client invokes the inference service.
type Client interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the client for cfg.Provider, wrapped with timeout and metrics.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	var (
		inner Client
		err   error
	)
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", ProviderNone:
		provider = ProviderNone
		inner = none{}
	case ProviderGenAI:
		inner, err = NewGenAI(ctx, cfg.APIKey, cfg.Model)
	case ProviderHTTP:
		inner, err = NewHTTP(cfg.BaseURL, cfg.APIKey, cfg.Model, nil)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{inner: inner, provider: provider, timeout: cfg.Timeout, logger: logger}, nil
}

// ValidProvider reports whether name is an accepted provider value.
func ValidProvider(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderNone, ProviderGenAI, ProviderHTTP:
		return true
	}
	return false
}

type none struct{}

func (none) Invoke(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConfigured
}

// instrumented bounds each call by timeout and records the outcome.
type instrumented struct {
	inner    Client
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

func (c *instrumented) Invoke(ctx context.Context, req Request) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.inner.Invoke(ctx, req)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case errors.Is(err, ErrNotConfigured):
		outcome = "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.ObserveAI(c.provider, outcome, elapsed)

	if err != nil && outcome != "not_configured" {
		c.logger.Warn("ai invocation failed",
			zap.String("provider", c.provider),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	}
	return resp, err
}

// decodeJSON extracts the JSON document from model text output, tolerating a
// surrounding markdown code fence.
func decodeJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, ErrEmptyResponse
	}
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(s), nil
}
