// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package route

import "strings"

// Tab is a bottom navigation entry.
type Tab string

const (
	TabHome      Tab = "home"
	TabAnalytics Tab = "analytics"
	TabAccount   Tab = "account"
	TabAlerts    Tab = "alerts"
)

// Tabs lists navigation entries in display order.
var Tabs = []Tab{TabHome, TabAnalytics, TabAccount, TabAlerts}

// Path returns the landing path of the tab.
func (t Tab) Path() string {
	switch t {
	case TabHome:
		return "/dashboard"
	case TabAnalytics:
		return "/analytics"
	case TabAccount:
		return "/account"
	case TabAlerts:
		return "/alerts"
	}
	return ""
}

// ActiveTab returns the tab highlighted for path, if any.
func ActiveTab(path string) (Tab, bool) {
	path = CleanPath(path)

	switch {
	case path == "/dashboard", path == "/machines",
		strings.HasPrefix(path, "/machine/"), strings.HasPrefix(path, "/device/"):
		return TabHome, true
	case path == "/account", path == "/settings":
		return TabAccount, true
	case path == "/analytics", path == "/refill-history", path == "/maintenance":
		return TabAnalytics, true
	}

	for _, t := range Tabs {
		if t.Path() == path {
			return t, true
		}
	}
	return "", false
}

// ShowNavigation reports whether the bottom navigation is rendered.
func ShowNavigation(path string, state SessionState) bool {
	return state != nil && state.Authenticated() && CleanPath(path) != LoginPath
}
