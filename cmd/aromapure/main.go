// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command aromapure serves the AromaPure fleet views over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/aromapure/internal/auth"
	"github.com/olegiv/aromapure/internal/cache"
	"github.com/olegiv/aromapure/internal/config"
	"github.com/olegiv/aromapure/internal/fleet"
	"github.com/olegiv/aromapure/internal/handler"
	"github.com/olegiv/aromapure/internal/logging"
	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/scheduler"
	"github.com/olegiv/aromapure/internal/session"
	"github.com/olegiv/aromapure/internal/store"
	"github.com/olegiv/aromapure/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// requestTimeout bounds view and action handlers.
const requestTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "AromaPure - air freshener fleet server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_DB_PATH           SQLite database path (default: ./data/aromapure.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_DEMO_USERNAME     Accepted username (default: Yash)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_DEMO_PASSWORD     Accepted password or argon2id hash (default: 123)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AROMAPURE_REDIS_URL         Redis URL for the fleet cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("aromapure %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo fleet: %w", err)
		}
	}

	verifier, err := auth.NewStaticVerifier(cfg.DemoUsername, cfg.DemoPassword)
	if err != nil {
		return fmt.Errorf("creating credential verifier: %w", err)
	}

	sessionManager := session.NewManager(db, cfg.IsDevelopment(), cfg.SessionLifetime)

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	fleetCache, backend, err := cache.NewCache(cache.CacheConfig{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cacheTTL,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() { _ = fleetCache.Close() }()
	slog.Info("cache initialized", "backend", backend)

	fleetService := fleet.NewService(db, fleetCache, cacheTTL, logger)

	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       cfg.LoginRateLimit,
		IPBurst:           cfg.LoginBurst,
		MaxFailedAttempts: cfg.LoginMaxAttempts,
		LockoutDuration:   cfg.LoginLockout,
		AttemptWindow:     cfg.LoginLockout,
	})
	defer loginProtection.Close()

	sched := scheduler.New(db, logger, cfg.EventRetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		SessionManager:  sessionManager,
		Verifier:        verifier,
		Fleet:           fleetService,
		Health:          handler.NewHealthHandler(db, fleetCache, backend, dataDir, info),
		LoginProtection: loginProtection,
		CSRF:            middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()),
		Security:        middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
		Version:         info,
		PerPage:         handler.DefaultPerPage,
		RequestTimeout:  requestTimeout,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
