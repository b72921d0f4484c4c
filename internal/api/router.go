// Package api provides the HTTP surface of bucketwatchd: the bucket
// freshness and usage check endpoints, health probes, and metrics.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// BucketChecker runs the bucket checks. Implemented by inspect.Inspector.
type BucketChecker interface {
	CheckFreshness(ctx context.Context, bucket, maxAge string) (*inspect.FreshnessResult, error)
	CheckUsage(ctx context.Context, bucket string) (*inspect.UsageResult, error)
}

// HealthChecker verifies that a dependency is reachable. Implementations
// should be lightweight (a TCP dial, not a full listing).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server holds dependencies for all HTTP handlers.
type Server struct {
	Checker       BucketChecker
	StorageHealth HealthChecker // storage endpoint reachability for readiness. Nil = skip.
	Metrics       *Metrics      // check counters exposed at /metrics. Nil = created by NewRouter.
	CORSOrigins   []string      // allowed CORS origins. Defaults to ["*"] — the API is read-only.
}

// NewRouter creates a configured chi router with all routes mounted.
func NewRouter(srv *Server) chi.Router {
	if srv.Metrics == nil {
		srv.Metrics = NewMetrics()
	}

	r := chi.NewRouter()

	corsOrigins := srv.CORSOrigins
	if len(corsOrigins) == 0 {
		// Monitoring pollers come from anywhere and the API is read-only
		// with no credentials of its own, so a wildcard default is safe.
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(securityHeaders)
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Health & metrics. /health and /health/live never touch storage.
	r.Get("/health", srv.HandleHealth)
	r.Get("/health/live", srv.HandleHealthLive)
	r.Get("/health/ready", srv.HandleHealthReady)
	r.Get("/metrics", srv.HandleMetrics)

	r.Route("/buckets/{bucket}", func(r chi.Router) {
		r.Get("/freshness", srv.HandleFreshness)
		r.Get("/usage", srv.HandleUsage)
	})

	return r
}

// ErrorResponse is the JSON envelope for failed checks:
// {"status":"error","reason":"…"}. Stale-object failures additionally carry
// the newest object, so the monitoring caller can still report what it was.
type ErrorResponse struct {
	Status       string        `json:"status"`
	Reason       string        `json:"reason"`
	NewestObject *NewestObject `json:"newest_object,omitempty"`
}

// checkErrorJSON writes the error envelope for a failed bucket check.
// A malformed max_age is the caller's fault (400); every other kind means
// "the bucket check failed" and reports 500, with the reason string
// distinguishing the causes for humans.
func checkErrorJSON(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if inspect.IsInvalidDuration(err) {
		status = http.StatusBadRequest
	}

	resp := ErrorResponse{Status: "error", Reason: err.Error()}
	if ce, ok := inspect.AsError(err); ok && ce.Kind == inspect.KindStaleObject && ce.Newest != nil {
		resp.NewestObject = &NewestObject{
			Key:          ce.Newest.Key,
			LastModified: ce.Newest.LastModified,
			AgeSeconds:   ce.AgeSeconds,
		}
	}

	writeJSON(w, status, resp)
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
// Logs an error if encoding fails (response may be partial at that point).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// securityHeaders adds standard HTTP security headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
