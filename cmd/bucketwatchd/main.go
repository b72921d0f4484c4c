// bucketwatchd is a sidecar health-check service for S3-compatible buckets.
// It answers freshness ("is the newest object young enough?") and usage
// ("how many objects, how many bytes?") questions over HTTP for external
// monitoring systems.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bucketwatch/bucketwatch/internal/api"
	"github.com/bucketwatch/bucketwatch/internal/config"
	"github.com/bucketwatch/bucketwatch/internal/inspect"
	"github.com/bucketwatch/bucketwatch/internal/storage"
	"github.com/bucketwatch/bucketwatch/internal/watch"
)

// validateEnv checks that critical environment variables have valid values.
// Returns a slice of validation errors (empty if all valid).
func validateEnv() []string {
	var errs []string

	if addr := os.Getenv("BUCKETWATCH_LISTEN_ADDR"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Sprintf("BUCKETWATCH_LISTEN_ADDR=%q: must be host:port (%v)", addr, err))
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if _, err := net.LookupPort("tcp", port); err != nil {
			errs = append(errs, fmt.Sprintf("PORT=%q: must be a valid port number", port))
		}
	}

	// S3_ENDPOINT may be host:port, a bare hostname, or a URL.
	if v := os.Getenv("S3_ENDPOINT"); v != "" && !strings.Contains(v, "://") {
		if _, _, err := net.SplitHostPort(v); err != nil && strings.Contains(v, ":") {
			errs = append(errs, fmt.Sprintf("S3_ENDPOINT=%q: must be a host, host:port, or URL", v))
		}
	}

	return errs
}

// healthURL derives the local health endpoint from the configured listen
// address. The listen host may be empty or 0.0.0.0; the probe always dials
// localhost on the same port.
func healthURL(listen string) string {
	_, port, err := net.SplitHostPort(listen)
	if err != nil || port == "" {
		port = "8080"
	}
	return "http://localhost:" + port + "/health"
}

// warnDefaultCredentials logs a security warning when the S3 credentials are
// the well-known MinIO defaults — fine locally, dangerous in production.
func warnDefaultCredentials(cfg *config.Config) {
	if cfg.S3.AccessKey == "minioadmin" || cfg.S3.SecretKey == "minioadmin" {
		slog.Warn("S3 credentials are set to default values (minioadmin) — change these for production deployments")
	}
}

func main() {
	// Built-in healthcheck for scratch containers (no wget/curl available).
	// Usage: /bucketwatchd healthcheck
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		// Resolve the listen address the same way the server does, so the
		// probe hits the right port when listen/PORT are customized.
		cfg, err := config.Load(config.ResolvePath())
		if err != nil {
			os.Exit(1)
		}
		resp, err := http.Get(healthURL(cfg.Listen))
		if err != nil {
			os.Exit(1)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Context-aware slog handler: request_id lands in every log record
	// whenever a request context is available.
	baseHandler := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(api.NewContextHandler(baseHandler)))

	if errs := validateEnv(); len(errs) > 0 {
		for _, e := range errs {
			slog.Error("invalid environment variable", "error", e)
		}
		os.Exit(1)
	}

	// Config: BUCKETWATCH_CONFIG env > ./bucketwatch.yaml > env-only defaults.
	configPath := config.ResolvePath()
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if configPath != "" {
		slog.Info("config loaded", "path", configPath)
	}
	warnDefaultCredentials(cfg)

	gateway, err := storage.NewS3Gateway(storage.S3Config{
		Endpoint:    cfg.S3.Endpoint,
		AccessKey:   cfg.S3.AccessKey,
		SecretKey:   cfg.S3.SecretKey,
		UseSSL:      cfg.S3.UseSSL,
		ListTimeout: cfg.S3.ListTimeout,
	})
	if err != nil {
		slog.Error("failed to create storage gateway", "endpoint", cfg.S3.Endpoint, "error", err)
		os.Exit(1)
	}
	slog.Info("storage gateway ready", "endpoint", cfg.S3.Endpoint, "ssl", cfg.S3.UseSSL)

	srv := &api.Server{
		Checker:       inspect.New(gateway),
		StorageHealth: storage.NewEndpointHealthChecker(cfg.S3.Endpoint),
		Metrics:       api.NewMetrics(),
	}
	if corsEnv := os.Getenv("CORS_ORIGINS"); corsEnv != "" {
		srv.CORSOrigins = strings.Split(corsEnv, ",")
	}

	// Optional background watcher: probes the configured buckets on a cron
	// schedule and logs/counts the outcomes.
	var watcher *watch.Watcher
	if cfg.Watch != nil {
		watcher, err = watch.New(srv.Checker, cfg.Watch, srv.Metrics)
		if err != nil {
			slog.Error("failed to create watcher", "error", err)
			os.Exit(1)
		}
		watcher.Start(context.Background())
		slog.Info("watcher started", "schedule", cfg.Watch.Schedule, "probes", len(cfg.Watch.Probes))
	}

	router := api.NewRouter(srv)
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	slog.Info("starting bucketwatchd", "addr", cfg.Listen, "version", api.Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	// Graceful shutdown: drain HTTP connections, then stop the watcher.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	if watcher != nil {
		watcher.Stop()
		slog.Info("watcher stopped")
	}

	slog.Info("bucketwatchd shutdown complete")
}
