// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/aromapure/internal/fleet"
	"github.com/olegiv/aromapure/internal/middleware"
)

// AlertsHandler handles alert actions. Routes are wrapped in
// middleware.RequireSession.
type AlertsHandler struct {
	fleet *fleet.Service
}

// NewAlertsHandler creates a new AlertsHandler.
func NewAlertsHandler(svc *fleet.Service) *AlertsHandler {
	return &AlertsHandler{fleet: svc}
}

// MarkRead handles POST /alerts/{id}/read.
func (h *AlertsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.fleet.MarkAlertRead(r.Context(), id); err != nil {
		h.alertError(w, r, "failed to mark alert read", id, err)
		return
	}
	h.respond(w, r, map[string]any{"id": id})
}

// MarkAllRead handles POST /alerts/read-all.
func (h *AlertsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.fleet.MarkAllAlertsRead(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to mark all alerts read", "category", "fleet", "error", err)
		return
	}
	h.respond(w, r, map[string]any{"updated": n})
}

// Delete handles DELETE /alerts/{id}.
func (h *AlertsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.fleet.DeleteAlert(r.Context(), id); err != nil {
		h.alertError(w, r, "failed to delete alert", id, err)
		return
	}
	slog.Info("alert deleted",
		"category", "fleet",
		"alert_id", id,
		"username", middleware.GetUsername(r),
	)
	h.respond(w, r, map[string]any{"id": id})
}

// ClearAll handles DELETE /alerts.
func (h *AlertsHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.fleet.ClearAlerts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to clear alerts", "category", "fleet", "error", err)
		return
	}
	slog.Info("alerts cleared",
		"category", "fleet",
		"deleted", n,
		"username", middleware.GetUsername(r),
	)
	h.respond(w, r, map[string]any{"deleted": n})
}

// respond adds the fresh unread count to a success response.
func (h *AlertsHandler) respond(w http.ResponseWriter, r *http.Request, data map[string]any) {
	unread, err := h.fleet.UnreadAlerts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count unread alerts", "category", "fleet", "error", err)
		return
	}
	data["unread"] = unread
	writeJSONSuccess(w, data)
}

func (h *AlertsHandler) alertError(w http.ResponseWriter, r *http.Request, msg, id string, err error) {
	if errors.Is(err, fleet.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "alert not found")
		return
	}
	logAndInternalError(w, msg, "category", "fleet", "alert_id", id, "error", err,
		middleware.AttrRequestID, middleware.GetRequestID(r))
}
