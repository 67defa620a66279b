// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/aromapure/internal/fleet"
	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/route"
	"github.com/olegiv/aromapure/internal/session"
	"github.com/olegiv/aromapure/internal/version"
)

// DefaultPerPage is the page size for machine and refill lists.
const DefaultPerPage = 20

// dashboardPreview caps the alerts and visits shown on the dashboard.
const dashboardPreview = 3

// ViewHandler renders the fleet views.
type ViewHandler struct {
	fleet   *fleet.Service
	perPage int
	version version.Info
}

// NewViewHandler creates a ViewHandler. perPage <= 0 uses DefaultPerPage.
func NewViewHandler(svc *fleet.Service, perPage int, info version.Info) *ViewHandler {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &ViewHandler{fleet: svc, perPage: perPage, version: info}
}

// Login renders the login view. Authenticated sessions go to the dashboard.
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r).Authenticated() {
		http.Redirect(w, r, route.TabHome.Path(), http.StatusSeeOther)
		return
	}
	renderView(w, r, map[string]any{
		"user_type": session.DefaultUserType,
	})
}

// Dashboard renders stats, recent alerts and upcoming visits.
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.fleet.Stats(ctx)
	if err != nil {
		logAndInternalError(w, "failed to load fleet stats", "error", err)
		return
	}
	alerts, err := h.fleet.ListAlerts(ctx, fleetQuery("", fleet.SortNewest))
	if err != nil {
		logAndInternalError(w, "failed to load alerts", "error", err)
		return
	}
	visits, err := h.fleet.ListVisits(ctx, fleetQuery(fleet.CategoryUpcoming, fleet.SortDate))
	if err != nil {
		logAndInternalError(w, "failed to load visits", "error", err)
		return
	}

	renderView(w, r, map[string]any{
		"stats":           stats,
		"unread_alerts":   alerts.Counts[fleet.CategoryUnread],
		"recent_alerts":   head(alerts.Items, dashboardPreview),
		"upcoming_visits": head(visits.Items, dashboardPreview),
	})
}

// Machines renders the filtered machine list. An unrecognised filter
// shows every machine.
func (h *ViewHandler) Machines(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r, "filter")
	if !fleet.MachineEngine.HasCategory(q.Category) {
		q.Category = ""
	}
	listing, err := h.fleet.ListMachines(r.Context(), q, pageParam(r), h.perPage)
	if err != nil {
		logAndInternalError(w, "failed to list machines", "error", err)
		return
	}
	renderView(w, r, map[string]any{
		"machines": listing,
		"links":    BuildPageLinks(listing.Pagination, r.URL.Path, r.URL.Query()),
	})
}

// MachineDetail renders one machine with its refills. It serves both
// /machine/:id and /device/:id.
func (h *ViewHandler) MachineDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(viewParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusNotFound, "machine not found")
		return
	}

	ctx := r.Context()
	m, err := h.fleet.Machine(ctx, id)
	if errors.Is(err, fleet.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "machine not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "failed to load machine", "machine_id", id, "error", err)
		return
	}

	refills, err := h.fleet.MachineRefills(ctx, id)
	if err != nil {
		logAndInternalError(w, "failed to load machine refills", "machine_id", id, "error", err)
		return
	}

	renderView(w, r, map[string]any{
		"machine":      m,
		"level_band":   m.LevelBand(),
		"needs_refill": m.NeedsRefill(),
		"health":       m.Health(),
		"refills":      refills,
	})
}

// RefillHistory renders refills filtered by technician, optionally for one
// machine.
func (h *ViewHandler) RefillHistory(w http.ResponseWriter, r *http.Request) {
	var machineID int64
	if raw := r.URL.Query().Get("machine"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid machine id")
			return
		}
		machineID = id
	}

	listing, err := h.fleet.ListRefills(r.Context(), machineID, listQuery(r, "technician"), pageParam(r), h.perPage)
	if err != nil {
		logAndInternalError(w, "failed to list refills", "error", err)
		return
	}
	renderView(w, r, map[string]any{
		"refills":    listing,
		"machine_id": machineID,
		"links":      BuildPageLinks(listing.Pagination, r.URL.Path, r.URL.Query()),
	})
}

// Maintenance renders visits for the upcoming or completed tab.
func (h *ViewHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r, "tab")
	if q.Category == "" {
		q.Category = fleet.CategoryUpcoming
	}

	listing, err := h.fleet.ListVisits(r.Context(), q)
	if err != nil {
		logAndInternalError(w, "failed to list visits", "error", err)
		return
	}
	renderView(w, r, map[string]any{
		"tab":    q.Category,
		"visits": listing,
	})
}

// Analytics renders refill and alert aggregates.
func (h *ViewHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.fleet.Stats(ctx)
	if err != nil {
		logAndInternalError(w, "failed to load fleet stats", "error", err)
		return
	}
	analytics, err := h.fleet.Analytics(ctx)
	if err != nil {
		logAndInternalError(w, "failed to load analytics", "error", err)
		return
	}

	renderView(w, r, map[string]any{
		"stats":     stats,
		"analytics": analytics,
	})
}

// Account renders the signed-in user and a fleet summary.
func (h *ViewHandler) Account(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.fleet.Stats(ctx)
	if err != nil {
		logAndInternalError(w, "failed to load fleet stats", "error", err)
		return
	}
	refills, err := h.fleet.Refills(ctx)
	if err != nil {
		logAndInternalError(w, "failed to load refills", "error", err)
		return
	}

	data := map[string]any{
		"stats":         stats,
		"total_refills": len(refills),
	}
	if s := middleware.GetSession(r); !s.IssuedAt.IsZero() {
		data["signed_in_at"] = s.IssuedAt.UTC().Format(time.RFC3339)
	}
	renderView(w, r, data)
}

// DefaultSettings are the preference toggles shown on the settings view.
var DefaultSettings = map[string]bool{
	"push_notifications":    true,
	"email_notifications":   true,
	"sound_alerts":          false,
	"dark_mode":             true,
	"auto_refresh":          true,
	"low_oil_alerts":        true,
	"maintenance_reminders": true,
}

// Settings renders preference defaults and build information.
func (h *ViewHandler) Settings(w http.ResponseWriter, r *http.Request) {
	renderView(w, r, map[string]any{
		"settings": DefaultSettings,
		"version":  h.version,
	})
}

// Device is a machine on the legacy device grid.
type Device struct {
	fleet.Machine
	Health string `json:"health"`
}

// AdminDashboard renders every machine with its health status.
func (h *ViewHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	machines, err := h.fleet.Machines(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load machines", "error", err)
		return
	}

	devices := make([]Device, 0, len(machines))
	summary := make(map[string]int)
	for _, m := range machines {
		health := m.Health()
		devices = append(devices, Device{Machine: m, Health: health})
		summary[health]++
	}

	renderView(w, r, map[string]any{
		"devices": devices,
		"summary": summary,
	})
}

// Alerts renders the filtered alert list and the unread count.
func (h *ViewHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	listing, err := h.fleet.ListAlerts(r.Context(), listQuery(r, "filter"))
	if err != nil {
		logAndInternalError(w, "failed to list alerts", "error", err)
		return
	}
	renderView(w, r, map[string]any{
		"alerts": listing,
		"unread": listing.Counts[fleet.CategoryUnread],
	})
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
