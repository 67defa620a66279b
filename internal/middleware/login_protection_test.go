// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtection returns a protection instance with a controllable clock.
func testLoginProtection(t *testing.T, maxAttempts int, lockout, window time.Duration) (*LoginProtection, *time.Time) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Close)

	now := time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }
	return lp, &now
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Close()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
	if lp.attemptWindow != 15*time.Minute {
		t.Errorf("attemptWindow = %v, want 15m (default)", lp.attemptWindow)
	}
}

func TestLoginProtectionLockout(t *testing.T) {
	lp, now := testLoginProtection(t, 3, time.Minute, 10*time.Minute)
	user := "Yash"

	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Fatal("account should not be locked initially")
	}

	for i := 1; i <= 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(user); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
	}
	locked, d := lp.RecordFailedAttempt(user)
	if !locked || d != time.Minute {
		t.Fatalf("third attempt: locked=%v duration=%v, want true 1m", locked, d)
	}

	locked, remaining := lp.IsAccountLocked(user)
	if !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked() = %v %v, want true 1m", locked, remaining)
	}

	*now = now.Add(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Error("account should unlock after the lockout expires")
	}

	// Lockouts are per username.
	if locked, _ := lp.IsAccountLocked("someone-else"); locked {
		t.Error("other usernames must not be locked")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp, now := testLoginProtection(t, 2, time.Minute, time.Hour)
	user := "Yash"

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}
	for i, w := range want {
		lp.RecordFailedAttempt(user)
		locked, d := lp.RecordFailedAttempt(user)
		if !locked || d != w {
			t.Fatalf("lockout %d: locked=%v duration=%v, want %v", i+1, locked, d, w)
		}
		*now = now.Add(d + time.Second)
	}
}

func TestLoginProtectionBackoffCap(t *testing.T) {
	lp, _ := testLoginProtection(t, 1, 10*time.Hour, time.Hour)

	_, first := lp.RecordFailedAttempt("Yash")
	_, second := lp.RecordFailedAttempt("Yash")
	if first != 10*time.Hour || second != maxLockout {
		t.Errorf("durations = %v, %v; want 10h, %v", first, second, maxLockout)
	}
}

func TestLoginProtectionRemainingAttempts(t *testing.T) {
	lp, now := testLoginProtection(t, 5, time.Minute, 10*time.Minute)
	user := "Yash"

	if got := lp.GetRemainingAttempts(user); got != 5 {
		t.Errorf("initial remaining = %d, want 5", got)
	}

	lp.RecordFailedAttempt(user)
	lp.RecordFailedAttempt(user)
	if got := lp.GetRemainingAttempts(user); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}

	lp.RecordSuccessfulLogin(user)
	if got := lp.GetRemainingAttempts(user); got != 5 {
		t.Errorf("remaining after success = %d, want 5", got)
	}

	lp.RecordFailedAttempt(user)
	*now = now.Add(11 * time.Minute)
	if got := lp.GetRemainingAttempts(user); got != 5 {
		t.Errorf("remaining after window = %d, want 5", got)
	}

	// A failure after the window starts a fresh count.
	lp.RecordFailedAttempt(user)
	if got := lp.GetRemainingAttempts(user); got != 4 {
		t.Errorf("remaining after reset = %d, want 4", got)
	}
}

func TestLoginProtectionCleanupStaleEntries(t *testing.T) {
	lp, now := testLoginProtection(t, 5, time.Minute, time.Minute)
	lp.RecordFailedAttempt("Yash")
	lp.CheckIPRateLimit("10.0.0.1")

	*now = now.Add(2 * time.Minute)
	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	n := len(lp.failedAttempts)
	lp.attemptsMu.RUnlock()
	if n != 0 {
		t.Errorf("failedAttempts has %d entries, want 0", n)
	}
	if lp.ipLimiters.size() != 1 {
		t.Errorf("ipLimiters size = %d, want 1 (below the clear threshold)", lp.ipLimiters.size())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"simple remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"X-Forwarded-For single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"X-Forwarded-For multiple", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"X-Real-IP", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"X-Forwarded-For wins", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
		{"X-Forwarded-For with spaces", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
		{"remote addr without port", "10.1.1.1", "", "", "10.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Close()

	wrapped := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/", nil)
		req.RemoteAddr = "192.168.1.100:5000"
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 5; i++ {
		if code := do(http.MethodGet); code != http.StatusOK {
			t.Fatalf("GET status = %d, want 200", code)
		}
	}
	for i := 0; i < 2; i++ {
		if code := do(http.MethodPost); code != http.StatusOK {
			t.Fatalf("POST %d status = %d, want 200", i+1, code)
		}
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("POST over burst status = %d, want 429", code)
	}
}
