// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command aromapurectl manages the device-local session slot. Every
// invocation restores the persisted session first, so a login survives
// process restarts until an explicit logout.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/olegiv/aromapure/internal/auth"
	"github.com/olegiv/aromapure/internal/config"
	"github.com/olegiv/aromapure/internal/session"
	"github.com/olegiv/aromapure/internal/store"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitUsage     = 2
	exitDenied    = 3
	exitLoggedOut = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: aromapurectl <command> [options]\n\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")
	_, _ = fmt.Fprintf(w, "  login -u <username> -p <password> [--type <user type>]\n")
	_, _ = fmt.Fprintf(w, "  logout\n")
	_, _ = fmt.Fprintf(w, "  status\n\n")
	_, _ = fmt.Fprintf(w, "The session backend is chosen by AROMAPURE_LOCAL_SESSION_BACKEND (sqlite, file, redis, memory).\n")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		return exitUsage
	}

	_ = godotenv.Load()

	cfg, err := config.LoadLocal()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	storage, closeFn, err := openStorage(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer closeFn()

	verifier, err := auth.NewStaticVerifier(cfg.DemoUsername, cfg.DemoPassword)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := session.NewStore(storage, verifier, session.WithLogger(logger))
	return runCommand(ctx, s, args, stdout, stderr)
}

// runCommand restores s and executes one subcommand.
func runCommand(ctx context.Context, s *session.Store, args []string, stdout, stderr io.Writer) int {
	s.Restore(ctx)

	switch args[0] {
	case "login":
		return cmdLogin(ctx, s, args[1:], stdout, stderr)
	case "logout":
		return cmdLogout(ctx, s, stdout)
	case "status":
		return cmdStatus(s, stdout)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func cmdLogin(ctx context.Context, s *session.Store, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.StringP("username", "u", "", "username")
	password := fs.StringP("password", "p", "", "password")
	userType := fs.StringP("type", "t", session.DefaultUserType, "user type")
	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(stderr, "Failed to parse flags: %v\n", err)
		return exitUsage
	}

	sess, err := s.Login(ctx, *username, *password, *userType)
	if errors.Is(err, session.ErrInvalidCredentials) {
		_, _ = fmt.Fprintln(stderr, "Invalid credentials")
		return exitDenied
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	_, _ = fmt.Fprintf(stdout, "logged in as %s (%s)\n", sess.User.Username, sess.User.UserType)
	return exitOK
}

func cmdLogout(ctx context.Context, s *session.Store, stdout io.Writer) int {
	username := s.Session().Username()
	s.Logout(ctx)
	if username == "" {
		_, _ = fmt.Fprintln(stdout, "not logged in")
		return exitOK
	}
	_, _ = fmt.Fprintf(stdout, "logged out %s\n", username)
	return exitOK
}

func cmdStatus(s *session.Store, stdout io.Writer) int {
	sess := s.Session()
	if !sess.Authenticated() {
		_, _ = fmt.Fprintln(stdout, "logged out")
		return exitLoggedOut
	}
	_, _ = fmt.Fprintf(stdout, "logged in as %s (%s) since %s\n",
		sess.User.Username, sess.User.UserType, sess.IssuedAt.UTC().Format(time.RFC3339))
	return exitOK
}

// openStorage opens the configured slot backend. The returned func
// releases its resources.
func openStorage(cfg *config.LocalConfig) (session.Storage, func(), error) {
	switch cfg.LocalSessionBackend {
	case config.BackendFile:
		return session.NewFileStorage(cfg.LocalSessionDir), func() {}, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		return session.NewRedisStorage(client, cfg.CachePrefix+"session:"), func() { _ = client.Close() }, nil

	case config.BackendMemory:
		slog.Warn("memory session backend does not survive process exit")
		return session.NewMemoryStorage(), func() {}, nil

	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		db, err := store.NewDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := store.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return session.NewSQLStorage(store.New(db)), func() { closeDB(db) }, nil
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}
