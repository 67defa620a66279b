// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a UUID to each request, reusing a well-formed incoming
// X-Request-Id. The id is stored under chi's key so chimw.GetReqID works.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request's id or "".
func GetRequestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}

// RequestLogger logs one line per request at INFO, or WARN for 5xx.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String(AttrRequestID, GetRequestID(r)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("ip", ClientIP(r)),
			)
		})
	}
}

// AttrRequestID matches the attribute key the event log lifts into its
// request_id column.
const AttrRequestID = "request_id"

// ClientInfo summarizes the User-Agent for auth event logs.
type ClientInfo struct {
	Browser string
	OS      string
	Device  string
	Bot     bool
}

// ParseClient parses the request's User-Agent header.
func ParseClient(r *http.Request) ClientInfo {
	ua := useragent.Parse(r.UserAgent())

	info := ClientInfo{Browser: ua.Name, OS: ua.OS, Bot: ua.Bot}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		info.Device = "mobile"
	case ua.Tablet:
		info.Device = "tablet"
	case ua.Bot:
		info.Device = "bot"
	default:
		info.Device = "desktop"
	}
	return info
}

// LogAttrs returns the client attributes for slog.
func (c ClientInfo) LogAttrs() []any {
	return []any{"browser", c.Browser, "os", c.OS, "device", c.Device}
}
