// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/aromapure/internal/listquery"
	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/route"
	"github.com/olegiv/aromapure/internal/session"
)

// Envelope wraps every view response.
type Envelope struct {
	View      route.View    `json:"view"`
	ActiveTab route.Tab     `json:"active_tab,omitempty"`
	ShowNav   bool          `json:"show_nav"`
	User      *session.User `json:"user"`
	Data      any           `json:"data"`
}

// newEnvelope builds the envelope for the decision Navigate stored on r.
func newEnvelope(r *http.Request, data any) Envelope {
	env := Envelope{Data: data}

	if d, ok := middleware.GetDecision(r); ok {
		env.View = d.Entry.View
	}
	if tab, ok := route.ActiveTab(r.URL.Path); ok {
		env.ActiveTab = tab
	}

	var state route.SessionState
	if store := middleware.GetSessionStore(r); store != nil {
		state = store
	}
	env.ShowNav = route.ShowNavigation(r.URL.Path, state)
	env.User = middleware.GetSession(r).User

	return env
}

// renderView writes the envelope with a 200 status.
func renderView(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, newEnvelope(r, data))
}

// viewParam returns a positional route parameter from the guard decision.
func viewParam(r *http.Request, name string) string {
	d, _ := middleware.GetDecision(r)
	return d.Param(name)
}

// listQuery reads a list query from the URL. categoryParam names the
// parameter carrying the category (filter, technician, tab).
func listQuery(r *http.Request, categoryParam string) listquery.Query {
	v := r.URL.Query()
	return listquery.Query{
		Category: strings.TrimSpace(v.Get(categoryParam)),
		Text:     v.Get("q"),
		SortKey:  strings.TrimSpace(v.Get("sort")),
	}
}

// pageParam returns the requested page, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func fleetQuery(category, sortKey string) listquery.Query {
	return listquery.Query{Category: category, SortKey: sortKey}
}
