// Package metrics defines the Prometheus collectors for HTTP traffic,
// onboarding progress and AI usage, plus the chi middleware and /metrics
// handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "innovhub"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	OnboardingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "onboarding",
			Name:      "transitions_total",
			Help:      "Wizard actions by the step they started from and the action taken",
		},
		[]string{"step", "action"},
	)

	OnboardingCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "onboarding",
			Name:      "completions_total",
			Help:      "Wizard exits by outcome (completed, skipped, failed)",
		},
		[]string{"outcome"},
	)

	AIInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "invocations_total",
			Help:      "AI inference calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	AIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "duration_seconds",
			Help:      "AI inference latency in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"provider"},
	)
)

// ObserveTransition counts one wizard action taken at step.
func ObserveTransition(step, action string) {
	OnboardingTransitions.WithLabelValues(step, action).Inc()
}

// ObserveCompletion counts a wizard exit.
func ObserveCompletion(outcome string) {
	OnboardingCompletions.WithLabelValues(outcome).Inc()
}

// ObserveAI counts an AI call and records its latency.
func ObserveAI(provider, outcome string, elapsed time.Duration) {
	AIInvocations.WithLabelValues(provider, outcome).Inc()
	AIDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Middleware records request metrics keyed by the chi route pattern.
// The /metrics endpoint itself is not counted.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
