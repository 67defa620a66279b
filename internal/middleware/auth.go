// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for session loading,
// navigation guarding and request context handling.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/aromapure/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeySession  ContextKey = "session"
	ContextKeyDecision ContextKey = "route_decision"
)

// Session creates middleware that restores the device session for the
// current browser. It must run inside sm.LoadAndSave. Each request gets its
// own Store over the scs-backed slot, so handlers never share state.
func Session(sm *scs.SessionManager, verifier session.CredentialVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	storage := session.NewSCSStorage(sm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := session.NewStore(storage, verifier, session.WithLogger(logger))
			store.Restore(r.Context())

			ctx := context.WithValue(r.Context(), ContextKeySession, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionStore returns the request's session store or nil.
func GetSessionStore(r *http.Request) *session.Store {
	store, _ := r.Context().Value(ContextKeySession).(*session.Store)
	return store
}

// GetSession returns a snapshot of the request's session. Requests without a
// session middleware report a logged-out session.
func GetSession(r *http.Request) session.Session {
	if store := GetSessionStore(r); store != nil {
		return store.Session()
	}
	return session.Session{}
}

// GetUsername returns the authenticated username or "".
func GetUsername(r *http.Request) string {
	return GetSession(r).Username()
}

// RequireSession rejects requests without an authenticated session with a
// 401 JSON response. Used for actions, which are never redirected.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := GetSessionStore(r)
		if store == nil || !store.Authenticated() {
			WriteJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSONError writes {"success":false,"error":message} with the status code.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
