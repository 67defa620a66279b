// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/olegiv/aromapure/internal/fleet"
)

func TestAlerts_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/alerts/read-all", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAlerts_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	alerts, err := env.fleet.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	var unreadID string
	for _, a := range alerts {
		if !a.IsRead {
			unreadID = a.ID
			break
		}
	}
	if unreadID == "" {
		t.Fatal("seed has no unread alert")
	}

	rec := env.do(t, http.MethodPost, "/alerts/"+unreadID+"/read", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeMap(t, rec.Body.Bytes())
	if body["unread"] != float64(2) {
		t.Errorf("unread = %v, want 2", body["unread"])
	}
}

func TestAlerts_MarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/alerts/read-all", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeMap(t, rec.Body.Bytes())
	if body["updated"] != float64(3) {
		t.Errorf("updated = %v, want 3", body["updated"])
	}
	if body["unread"] != float64(0) {
		t.Errorf("unread = %v, want 0", body["unread"])
	}
}

func TestAlerts_Delete(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	alerts, err := env.fleet.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/alerts/"+alerts[0].ID, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	after, err := env.fleet.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(after) != len(alerts)-1 {
		t.Errorf("alerts after delete = %d, want %d", len(after), len(alerts)-1)
	}
}

func TestAlerts_ClearAll(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodDelete, "/alerts", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("without session: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	cookie := env.login(t)
	rec := env.do(t, http.MethodDelete, "/alerts", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeMap(t, rec.Body.Bytes())
	if body["deleted"] != float64(6) {
		t.Errorf("deleted = %v, want 6", body["deleted"])
	}
	if body["unread"] != float64(0) {
		t.Errorf("unread = %v, want 0", body["unread"])
	}

	rec = env.do(t, http.MethodGet, "/alerts", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("alerts view: status = %d, want %d", rec.Code, http.StatusOK)
	}
	var data struct {
		Alerts fleet.Listing[fleet.Alert] `json:"alerts"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(data.Alerts.Items) != 0 {
		t.Errorf("alerts after clear = %d, want 0", len(data.Alerts.Items))
	}
}

func TestAlerts_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	if rec := env.do(t, http.MethodPost, "/alerts/missing/read", "", cookie); rec.Code != http.StatusNotFound {
		t.Errorf("mark read: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := env.do(t, http.MethodDelete, "/alerts/missing", "", cookie); rec.Code != http.StatusNotFound {
		t.Errorf("delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
