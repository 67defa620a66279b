// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/aromapure/internal/store"
	"github.com/olegiv/aromapure/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.TestLoggerSilent()

	s := New(nil, logger, 30)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.retention != 30*24*time.Hour {
		t.Errorf("retention = %v, want 720h", s.retention)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), 30)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
	s.Stop()
}

func TestScheduler_StartWithoutRetention(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), 0)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if got := len(s.cron.Entries()); got != 0 {
		t.Errorf("entries = %d, want 0 when pruning is disabled", got)
	}
	if n, err := s.PruneEvents(context.Background()); n != 0 || err != nil {
		t.Errorf("PruneEvents() = %d, %v; want 0, nil", n, err)
	}
}

func TestPruneEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	q := store.New(db)

	now := time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC)
	for _, age := range []time.Duration{time.Hour, 10 * 24 * time.Hour, 40 * 24 * time.Hour, 90 * 24 * time.Hour} {
		if _, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level:     "warning",
			Category:  "system",
			Message:   "test",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s := New(db, testutil.TestLoggerSilent(), 30)
	s.now = func() time.Time { return now }

	n, err := s.PruneEvents(ctx)
	if err != nil {
		t.Fatalf("PruneEvents: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d events, want 2", n)
	}

	left, err := q.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(left) != 2 {
		t.Errorf("%d events left, want 2", len(left))
	}
}
