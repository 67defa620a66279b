// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

var demoMachines = []CreateMachineParams{
	{Name: "AromaPure Pro 3000", Location: "Main Office - Floor 3", Code: "AP-3000-001", Sku: "SKU-12345", Status: "installed", OilLevel: 75, UsageRate: 2.5, Efficiency: 94, Online: true, Fragrance: "Lavender", LastRefillAt: day(2024, 12, 15), InstalledAt: day(2024, 1, 10)},
	{Name: "AromaPure Elite 5000", Location: "Conference Room A", Code: "AP-5000-002", Sku: "SKU-12346", Status: "assigned", OilLevel: 45, UsageRate: 3.2, Efficiency: 87, Online: true, Fragrance: "Eucalyptus", LastRefillAt: day(2024, 11, 28), InstalledAt: day(2024, 2, 15)},
	{Name: "AromaPure Classic 2000", Location: "Reception Area", Code: "AP-2000-003", Sku: "SKU-12347", Status: "installed", OilLevel: 18, UsageRate: 1.8, Efficiency: 72, Online: false, Fragrance: "Citrus", LastRefillAt: day(2024, 10, 5), InstalledAt: day(2024, 3, 20)},
	{Name: "AromaPure Mini 1000", Location: "Break Room", Code: "AP-1000-004", Sku: "SKU-12348", Status: "installed", OilLevel: 85, UsageRate: 1.2, Efficiency: 96, Online: true, Fragrance: "Ocean Breeze", LastRefillAt: day(2024, 12, 10), InstalledAt: day(2024, 4, 5)},
	{Name: "AromaPure Elite 5000", Location: "Executive Suite", Code: "AP-5000-005", Sku: "SKU-12349", Status: "installed", OilLevel: 22, UsageRate: 2.8, Efficiency: 78, Online: true, Fragrance: "Lavender", LastRefillAt: day(2024, 9, 15), InstalledAt: day(2024, 5, 10)},
	{Name: "AromaPure Pro 3000", Location: "Lobby Area", Code: "AP-3000-006", Sku: "SKU-12350", Status: "installed", OilLevel: 8, UsageRate: 3.5, Efficiency: 65, Online: true, Fragrance: "Citrus", LastRefillAt: day(2024, 10, 20), InstalledAt: day(2024, 6, 1)},
	{Name: "AromaPure Classic 2000", Location: "Meeting Room B", Code: "AP-2000-007", Sku: "SKU-12351", Status: "installed", OilLevel: 65, UsageRate: 2.0, Efficiency: 91, Online: true, Fragrance: "Eucalyptus", LastRefillAt: day(2024, 12, 5), InstalledAt: day(2024, 7, 15)},
	{Name: "AromaPure Mini 1000", Location: "Staff Kitchen", Code: "AP-1000-008", Sku: "SKU-12352", Status: "installed", OilLevel: 92, UsageRate: 1.0, Efficiency: 98, Online: true, Fragrance: "Ocean Breeze", LastRefillAt: day(2024, 12, 18), InstalledAt: day(2024, 8, 20)},
}

// Refills and visits reference machines by their position in demoMachines.
var demoRefills = []struct {
	machine int
	params  CreateRefillParams
}{
	{0, CreateRefillParams{Technician: "John Smith", AmountMl: 250, LevelBefore: 15, LevelAfter: 95, FragranceCode: "FRG-001", FragranceName: "Lavender Dreams", DurationMinutes: 15, RefilledAt: day(2024, 12, 15)}},
	{1, CreateRefillParams{Technician: "Sarah Johnson", AmountMl: 200, LevelBefore: 20, LevelAfter: 90, FragranceCode: "FRG-002", FragranceName: "Ocean Breeze", DurationMinutes: 12, RefilledAt: day(2024, 11, 28)}},
	{2, CreateRefillParams{Technician: "Mike Davis", AmountMl: 300, LevelBefore: 5, LevelAfter: 100, FragranceCode: "FRG-001", FragranceName: "Lavender Dreams", DurationMinutes: 20, RefilledAt: day(2024, 10, 20)}},
	{3, CreateRefillParams{Technician: "John Smith", AmountMl: 180, LevelBefore: 25, LevelAfter: 85, FragranceCode: "FRG-003", FragranceName: "Citrus Fresh", DurationMinutes: 10, RefilledAt: day(2024, 9, 15)}},
	{0, CreateRefillParams{Technician: "Sarah Johnson", AmountMl: 220, LevelBefore: 18, LevelAfter: 92, FragranceCode: "FRG-002", FragranceName: "Ocean Breeze", Notes: "Changed fragrance type", DurationMinutes: 18, RefilledAt: day(2024, 8, 10)}},
}

var demoVisits = []struct {
	machine int
	params  CreateVisitParams
}{
	{0, CreateVisitParams{Technician: "John Smith", TechnicianRating: 4.8, TechnicianPhone: "+1 234-567-8901", Status: "assigned", Type: "Routine Check", EstimatedMinutes: 30, ScheduledAt: day(2025, 1, 15)}},
	{1, CreateVisitParams{Technician: "Sarah Johnson", TechnicianRating: 4.9, TechnicianPhone: "+1 234-567-8902", Status: "pending", Type: "Filter Replacement", EstimatedMinutes: 45, ScheduledAt: day(2025, 1, 22)}},
	{3, CreateVisitParams{Technician: "Pending Assignment", Status: "pending", Type: "Annual Service", EstimatedMinutes: 60, ScheduledAt: day(2025, 2, 5)}},
	{2, CreateVisitParams{Technician: "Mike Davis", TechnicianRating: 4.7, TechnicianPhone: "+1 234-567-8903", Status: "completed", Type: "Full Service", Notes: "Replaced nozzle and cleaned reservoir", EstimatedMinutes: 60, ScheduledAt: day(2024, 12, 10)}},
	{3, CreateVisitParams{Technician: "John Smith", TechnicianRating: 4.8, TechnicianPhone: "+1 234-567-8901", Status: "completed", Type: "Routine Inspection", Notes: "All systems normal", EstimatedMinutes: 30, ScheduledAt: day(2024, 11, 25)}},
	{0, CreateVisitParams{Technician: "Sarah Johnson", TechnicianRating: 4.9, TechnicianPhone: "+1 234-567-8902", Status: "completed", Type: "Emergency Repair", Notes: "Fixed connectivity issue", EstimatedMinutes: 90, ScheduledAt: day(2024, 10, 15)}},
}

var demoAlerts = []struct {
	age time.Duration
	p   CreateAlertParams
}{
	{5 * time.Minute, CreateAlertParams{Type: "error", Title: "Low Oil Level - Critical", Message: "AromaPure Pro 3000 requires immediate refill. Oil level at 8%", Machine: "Pro 3000"}},
	{time.Hour, CreateAlertParams{Type: "warning", Title: "Maintenance Due Soon", Message: "Scheduled maintenance for Elite 5000 in 2 days", Machine: "Elite 5000"}},
	{3 * time.Hour, CreateAlertParams{Type: "success", Title: "Refill Completed", Message: "AromaPure Classic 2000 refill successful - 250ml added", Machine: "Classic 2000", IsRead: true}},
	{24 * time.Hour, CreateAlertParams{Type: "info", Title: "System Update Available", Message: "New firmware v2.4.1 available for your devices", IsRead: true}},
	{48 * time.Hour, CreateAlertParams{Type: "warning", Title: "High Usage Detected", Message: "Mini 1000 usage 40% higher than average today", Machine: "Mini 1000"}},
	{72 * time.Hour, CreateAlertParams{Type: "error", Title: "Connection Lost", Message: "Classic 2000 went offline. Check WiFi connection", Machine: "Classic 2000", IsRead: true}},
}

// SeedDemo fills an empty database with the demo fleet.
// It does nothing when machines already exist.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	n, err := queries.CountMachines(ctx)
	if err != nil {
		return fmt.Errorf("counting machines: %w", err)
	}
	if n > 0 {
		slog.Info("fleet data already exists, skipping seed")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := queries.WithTx(tx)

	ids := make([]int64, len(demoMachines))
	for i, m := range demoMachines {
		created, err := q.CreateMachine(ctx, m)
		if err != nil {
			return fmt.Errorf("creating machine %s: %w", m.Code, err)
		}
		ids[i] = created.ID
	}

	for _, r := range demoRefills {
		p := r.params
		p.MachineID = ids[r.machine]
		if err := q.CreateRefill(ctx, p); err != nil {
			return fmt.Errorf("creating refill: %w", err)
		}
	}

	for _, v := range demoVisits {
		p := v.params
		p.MachineID = ids[v.machine]
		if err := q.CreateVisit(ctx, p); err != nil {
			return fmt.Errorf("creating maintenance visit: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, a := range demoAlerts {
		p := a.p
		p.ID = uuid.NewString()
		p.CreatedAt = now.Add(-a.age)
		if err := q.CreateAlert(ctx, p); err != nil {
			return fmt.Errorf("creating alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seeded demo fleet",
		"machines", len(demoMachines),
		"refills", len(demoRefills),
		"visits", len(demoVisits),
		"alerts", len(demoAlerts),
	)
	return nil
}
