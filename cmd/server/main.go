package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/webeat/weve/internal/config"
	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/jobs"
	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/service"
	"github.com/webeat/weve/migrations"
	"github.com/webeat/weve/pkg/jwt"
	"github.com/webeat/weve/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(cfg.Server.Env)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		slog.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(applied) > 0 {
		slog.Info("applied migrations", slog.Any("files", applied))
	}

	// Initialize the signer for the OIDC flow cookie
	flowSigner, err := newFlowSigner(cfg)
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blobs, err := media.NewLocalStore(cfg.Media.Dir)
	if err != nil {
		slog.Error("failed to open media store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize SSE event hub
	eventHub := service.NewEventHub(30 * time.Second)
	defer eventHub.Close()

	// Initialize repositories and services
	deps, err := buildDeps(ctx, cfg, db, blobs, flowSigner, eventHub)
	if err != nil {
		slog.Error("failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize background jobs
	sessionSweeper := jobs.NewSessionSweeper(deps.sessions, time.Hour)
	sessionSweeper.Start()
	defer sessionSweeper.Stop()

	inviteSweeper := jobs.NewInviteSweeper(deps.couples, 15*time.Minute)
	inviteSweeper.Start()
	defer inviteSweeper.Stop()

	// Initialize rate limiter
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		})
		defer rateLimiter.Stop()
	}

	// Replays retried POSTs (invites, expenses, checkout)
	idempotency := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	defer idempotency.Stop()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	deps.rateLimiter = rateLimiter
	deps.idempotency = idempotency
	deps.registry = registry
	mux := newRouter(deps)

	// Apply global middleware
	wrapped := middleware.Chain(
		metrics.Middleware(mux),
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server. The stream handler clears its own write deadline.
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           wrapped,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Close streams first so Shutdown does not wait on them
	eventHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

// newFlowSigner loads the configured key, or generates a throwaway one
// outside production. In-flight logins fail across a restart with the
// generated key.
func newFlowSigner(cfg *config.Config) (*jwt.Service, error) {
	if cfg.JWT.PrivateKeyPath != "" {
		return jwt.NewService(jwt.Config{
			PrivateKeyPath: cfg.JWT.PrivateKeyPath,
			PublicKeyPath:  cfg.JWT.PublicKeyPath,
			Issuer:         cfg.JWT.Issuer,
			ExpirationMins: cfg.JWT.ExpirationMins,
		})
	}
	if cfg.IsProduction() && cfg.OIDC.IsConfigured() {
		return nil, errors.New("JWT_PRIVATE_KEY_PATH is required in production")
	}
	slog.Warn("JWT_PRIVATE_KEY_PATH not set, using an ephemeral signing key")
	return jwt.NewEphemeralService(cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationMins)*time.Minute)
}
