// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/aromapure/internal/cache"
	"github.com/olegiv/aromapure/internal/fleet"
	"github.com/olegiv/aromapure/internal/middleware"
	"github.com/olegiv/aromapure/internal/session"
	"github.com/olegiv/aromapure/internal/testutil"
	"github.com/olegiv/aromapure/internal/version"
)

const (
	testUsername = "Yash"
	testPassword = "123"
)

type testEnv struct {
	db     *sql.DB
	sm     *scs.SessionManager
	fleet  *fleet.Service
	lp     *middleware.LoginProtection
	router http.Handler
}

func testVerifier() session.CredentialVerifier {
	return session.VerifierFunc(func(_ context.Context, username, password string) error {
		if username == testUsername && password == testPassword {
			return nil
		}
		return session.ErrInvalidCredentials
	})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SeededDB(t)

	sm := scs.New()
	sm.Store = memstore.New()
	sm.Lifetime = time.Hour

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	svc := fleet.NewService(db, c, time.Minute, nil)

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(lp.Close)

	router := NewRouter(RouterConfig{
		SessionManager:  sm,
		Verifier:        testVerifier(),
		Fleet:           svc,
		Health:          NewHealthHandler(db, c, "memory", t.TempDir(), version.Info{Version: "v1.0.0"}),
		LoginProtection: lp,
		CSRF:            middleware.DefaultCSRFConfig([]byte("01234567890123456789012345678901"), true, ""),
		Security:        middleware.DefaultSecurityHeadersConfig(true),
		Version:         version.Info{Version: "v1.0.0"},
		PerPage:         5,
	})

	return &testEnv{db: db, sm: sm, fleet: svc, lp: lp, router: router}
}

// do sends a request through the router with the given cookies.
func (e *testEnv) do(t *testing.T, method, target string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login signs in through the form endpoint and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	form := url.Values{"username": {testUsername}, "password": {testPassword}}
	rec := e.do(t, http.MethodPost, "/", form.Encode())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.sm.Cookie.Name {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

type envelopeResponse struct {
	View      string          `json:"view"`
	ActiveTab string          `json:"active_tab"`
	ShowNav   bool            `json:"show_nav"`
	User      *session.User   `json:"user"`
	Data      json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var env envelopeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v; body: %s", err, rec.Body.String())
	}
	return env
}

func decodeMap(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decoding JSON: %v; body: %s", err, string(data))
	}
	return m
}
