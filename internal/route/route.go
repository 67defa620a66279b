// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package route decides whether a requested path may be rendered for the
// current session and which navigation tab it belongs to.
package route

import (
	"strings"
)

// LoginPath is the unprotected entry point and the target of every denial.
const LoginPath = "/"

// View identifies the page rendered for a route.
type View string

const (
	ViewLogin          View = "login"
	ViewDashboard      View = "dashboard"
	ViewMachines       View = "machines"
	ViewMachineDetail  View = "machine_detail"
	ViewRefillHistory  View = "refill_history"
	ViewMaintenance    View = "maintenance"
	ViewAnalytics      View = "analytics"
	ViewAccount        View = "account"
	ViewAdminDashboard View = "admin_dashboard"
	ViewDeviceDetail   View = "device_detail"
	ViewSettings       View = "settings"
	ViewAlerts         View = "alerts"
)

// Entry is one row of the route table. Pattern segments starting with ':'
// match any single non-empty path segment.
type Entry struct {
	Pattern   string
	Protected bool
	View      View
}

// Table is an ordered list of entries; the first match wins.
type Table []Entry

// DefaultTable returns the application's routes.
func DefaultTable() Table {
	return Table{
		{Pattern: "/", Protected: false, View: ViewLogin},
		{Pattern: "/dashboard", Protected: true, View: ViewDashboard},
		{Pattern: "/machines", Protected: true, View: ViewMachines},
		{Pattern: "/machine/:id", Protected: true, View: ViewMachineDetail},
		{Pattern: "/refill-history", Protected: true, View: ViewRefillHistory},
		{Pattern: "/maintenance", Protected: true, View: ViewMaintenance},
		{Pattern: "/analytics", Protected: true, View: ViewAnalytics},
		{Pattern: "/account", Protected: true, View: ViewAccount},
		{Pattern: "/admin/dashboard", Protected: true, View: ViewAdminDashboard},
		{Pattern: "/device/:id", Protected: true, View: ViewDeviceDetail},
		{Pattern: "/settings", Protected: true, View: ViewSettings},
		{Pattern: "/alerts", Protected: true, View: ViewAlerts},
	}
}

// Match finds the entry for path and returns its positional parameters.
func (t Table) Match(path string) (Entry, map[string]string, bool) {
	segs := splitPath(path)
	for _, e := range t {
		if params, ok := matchSegments(splitPath(e.Pattern), segs); ok {
			return e, params, true
		}
	}
	return Entry{}, nil, false
}

// CleanPath drops the query string and a trailing slash. The root path is
// returned unchanged.
func CleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return LoginPath
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(CleanPath(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}

	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}
