// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/route"
	"github.com/olegiv/aromapure/internal/session"
)

// MsgInvalidCredentials is shown for any failed login.
const MsgInvalidCredentials = "Invalid credentials"

// maxLoginBody caps the login request body.
const maxLoginBody = 4 << 10

// AuthHandler handles login and logout.
type AuthHandler struct {
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		sessionManager:  sm,
		loginProtection: lp,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

func parseLogin(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	if isJSONRequest(r) {
		body := http.MaxBytesReader(w, r.Body, maxLoginBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		req.UserType = r.PostFormValue("user_type")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.UserType = strings.TrimSpace(req.UserType)
	return req, nil
}

// Login handles POST /.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSessionStore(r)
	if store == nil {
		logAndInternalError(w, "login without session middleware")
		return
	}

	req, err := parseLogin(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid login request")
		return
	}

	client := middleware.ParseClient(r)
	logArgs := append([]any{
		"category", "auth",
		"username", req.Username,
		"ip", middleware.ClientIP(r),
		middleware.AttrRequestID, middleware.GetRequestID(r),
	}, client.LogAttrs()...)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			slog.Warn("login attempt on locked account", logArgs...)
			writeJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	sess, err := store.Login(r.Context(), req.Username, req.Password, req.UserType)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		slog.Warn("login failed: invalid credentials", logArgs...)
		h.loginFailed(w, req.Username)
		return
	case err != nil:
		logAndInternalError(w, "login failed: session storage error", append(logArgs, "error", err)...)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}

	// New token after privilege change to prevent session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user logged in", append(logArgs, "user_type", sess.User.UserType)...)

	target := route.TabHome.Path()
	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{
			"redirect": target,
			"user":     sess.User,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, username string) {
	if h.loginProtection != nil {
		if locked, d := h.loginProtection.RecordFailedAttempt(username); locked {
			writeJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(d)))
			return
		}
	}
	writeJSONError(w, http.StatusUnauthorized, MsgInvalidCredentials)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if store := middleware.GetSessionStore(r); store != nil {
		username := store.Session().Username()
		store.Logout(r.Context())
		if username != "" {
			slog.Info("user logged out",
				"category", "auth",
				"username", username,
				middleware.AttrRequestID, middleware.GetRequestID(r),
			)
		}
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "category", "session", "error", err)
	}

	http.Redirect(w, r, route.LoginPath, http.StatusSeeOther)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
