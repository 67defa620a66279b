// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/aromapure/internal/route"
)

// Navigate gates view requests through the route guard. GET and HEAD requests
// that the guard denies are redirected (303) to the decision's target;
// allowed requests carry the decision in their context. Other methods pass
// through untouched.
func Navigate(guard *route.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			var state route.SessionState
			if store := GetSessionStore(r); store != nil {
				state = store
			}

			d := guard.Resolve(r.URL.Path, state)
			if !d.Allowed() {
				slog.Debug("navigation denied", "path", r.URL.Path, "target", d.Target)
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyDecision, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDecision returns the guard decision stored by Navigate.
func GetDecision(r *http.Request) (route.Decision, bool) {
	d, ok := r.Context().Value(ContextKeyDecision).(route.Decision)
	return d, ok
}
