// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/aromapure/internal/cache"
	"github.com/olegiv/aromapure/internal/store"
)

// Cache keys. Everything lives under KeyPrefix.
const (
	KeyPrefix   = "fleet:"
	keyMachines = KeyPrefix + "machines"
	keyRefills  = KeyPrefix + "refills"
	keyAlerts   = KeyPrefix + "alerts"
	keyVisits   = KeyPrefix + "visits"
)

// Service reads fleet data through a cache and applies alert mutations.
type Service struct {
	queries  *store.Queries
	cache    cache.Cacher
	machines *cache.TypedCache[[]Machine]
	refills  *cache.TypedCache[[]Refill]
	alerts   *cache.TypedCache[[]Alert]
	visits   *cache.TypedCache[[]Visit]
	logger   *slog.Logger
}

// NewService creates a Service. ttl bounds how long lists are cached.
func NewService(db *sql.DB, c cache.Cacher, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		queries:  store.New(db),
		cache:    c,
		machines: cache.NewTypedCache[[]Machine](c, ttl),
		refills:  cache.NewTypedCache[[]Refill](c, ttl),
		alerts:   cache.NewTypedCache[[]Alert](c, ttl),
		visits:   cache.NewTypedCache[[]Visit](c, ttl),
		logger:   logger,
	}
}

// Machines returns every machine in id order.
func (s *Service) Machines(ctx context.Context) ([]Machine, error) {
	return s.machines.GetOrSet(ctx, keyMachines, func(ctx context.Context) ([]Machine, error) {
		rows, err := s.queries.ListMachines(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing machines: %w", err)
		}
		return convert(rows, machineFromStore), nil
	})
}

// Machine returns one machine or ErrNotFound.
func (s *Service) Machine(ctx context.Context, id int64) (Machine, error) {
	m, err := s.queries.GetMachine(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Machine{}, ErrNotFound
	}
	if err != nil {
		return Machine{}, fmt.Errorf("getting machine %d: %w", id, err)
	}
	return machineFromStore(m), nil
}

// Refills returns every refill, newest first.
func (s *Service) Refills(ctx context.Context) ([]Refill, error) {
	return s.refills.GetOrSet(ctx, keyRefills, func(ctx context.Context) ([]Refill, error) {
		rows, err := s.queries.ListRefills(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing refills: %w", err)
		}
		return convert(rows, refillFromStore), nil
	})
}

// MachineRefills returns the refills of one machine, newest first.
func (s *Service) MachineRefills(ctx context.Context, machineID int64) ([]Refill, error) {
	rows, err := s.queries.ListRefillsByMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("listing refills for machine %d: %w", machineID, err)
	}
	return convert(rows, refillFromStore), nil
}

// Alerts returns every alert, newest first.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	return s.alerts.GetOrSet(ctx, keyAlerts, func(ctx context.Context) ([]Alert, error) {
		rows, err := s.queries.ListAlerts(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing alerts: %w", err)
		}
		return convert(rows, alertFromStore), nil
	})
}

// Visits returns every maintenance visit, soonest first.
func (s *Service) Visits(ctx context.Context) ([]Visit, error) {
	return s.visits.GetOrSet(ctx, keyVisits, func(ctx context.Context) ([]Visit, error) {
		rows, err := s.queries.ListVisits(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing visits: %w", err)
		}
		return convert(rows, visitFromStore), nil
	})
}

// MarkAlertRead marks one alert read. Unknown ids yield ErrNotFound.
func (s *Service) MarkAlertRead(ctx context.Context, id string) error {
	n, err := s.queries.MarkAlertRead(ctx, id)
	if err != nil {
		return fmt.Errorf("marking alert %s read: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, keyAlerts)
	return nil
}

// MarkAllAlertsRead marks every alert read and returns how many changed.
func (s *Service) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	n, err := s.queries.MarkAllAlertsRead(ctx)
	if err != nil {
		return 0, fmt.Errorf("marking all alerts read: %w", err)
	}
	s.invalidate(ctx, keyAlerts)
	return n, nil
}

// DeleteAlert removes one alert. Unknown ids yield ErrNotFound.
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	n, err := s.queries.DeleteAlert(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting alert %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, keyAlerts)
	return nil
}

// ClearAlerts removes every alert and returns how many were removed.
func (s *Service) ClearAlerts(ctx context.Context) (int64, error) {
	n, err := s.queries.ClearAlerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing alerts: %w", err)
	}
	s.invalidate(ctx, keyAlerts)
	return n, nil
}

// UnreadAlerts counts unread alerts.
func (s *Service) UnreadAlerts(ctx context.Context) (int, error) {
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return 0, err
	}
	return AlertEngine.Counts(alerts)[CategoryUnread], nil
}

// Invalidate drops every cached fleet list.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, KeyPrefix); err != nil {
		s.logger.Warn("failed to invalidate fleet cache", "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate fleet cache", "key", key, "error", err)
	}
}
