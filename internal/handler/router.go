// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/aromapure/internal/fleet"
	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/route"
	"github.com/olegiv/aromapure/internal/session"
	"github.com/olegiv/aromapure/internal/version"
)

// RouterConfig collects the dependencies of the HTTP router.
type RouterConfig struct {
	SessionManager  *scs.SessionManager
	Verifier        session.CredentialVerifier
	Fleet           *fleet.Service
	Health          *HealthHandler
	LoginProtection *middleware.LoginProtection // optional
	CSRF            middleware.CSRFConfig
	Security        middleware.SecurityHeadersConfig
	Routes          route.Table // defaults to route.DefaultTable()
	Version         version.Info
	PerPage         int
	RequestTimeout  time.Duration // 0 disables the timeout
	Logger          *slog.Logger
}

// NewRouter wires middleware, views and actions.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Routes == nil {
		cfg.Routes = route.DefaultTable()
	}

	guard := route.NewGuard(cfg.Routes)
	views := NewViewHandler(cfg.Fleet, cfg.PerPage, cfg.Version)
	authHandler := NewAuthHandler(cfg.SessionManager, cfg.LoginProtection)
	alertsHandler := NewAlertsHandler(cfg.Fleet)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(cfg.Security))

	// Health checks need no CSRF protection but may show details to a
	// signed-in device.
	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionManager.LoadAndSave)
		r.Use(middleware.Session(cfg.SessionManager, cfg.Verifier, cfg.Logger))
		r.Get("/health", cfg.Health.Health)
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionManager.LoadAndSave)
		r.Use(middleware.Session(cfg.SessionManager, cfg.Verifier, cfg.Logger))
		r.Use(middleware.CSRF(cfg.CSRF))

		// Views
		r.Group(func(r chi.Router) {
			r.Use(middleware.Navigate(guard))
			r.Get("/", views.Login)
			r.Get("/dashboard", views.Dashboard)
			r.Get("/machines", views.Machines)
			r.Get("/machine/{id}", views.MachineDetail)
			r.Get("/device/{id}", views.MachineDetail)
			r.Get("/refill-history", views.RefillHistory)
			r.Get("/maintenance", views.Maintenance)
			r.Get("/analytics", views.Analytics)
			r.Get("/account", views.Account)
			r.Get("/settings", views.Settings)
			r.Get("/admin/dashboard", views.AdminDashboard)
			r.Get("/alerts", views.Alerts)
		})

		// Login and logout
		r.Group(func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Post("/", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		// Alert actions
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/alerts/read-all", alertsHandler.MarkAllRead)
			r.Delete("/alerts", alertsHandler.ClearAll)
			r.Post("/alerts/{id}/read", alertsHandler.MarkRead)
			r.Delete("/alerts/{id}", alertsHandler.Delete)
		})

		// Unknown GET paths, including GETs on action-only paths, are
		// redirected to the login view by the guard.
		r.NotFound(middleware.Navigate(guard)(http.HandlerFunc(notFound)).ServeHTTP)
		r.MethodNotAllowed(middleware.Navigate(guard)(http.HandlerFunc(methodNotAllowed)).ServeHTTP)
	})

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}
