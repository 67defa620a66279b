// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// =============================================================================
// MACHINES
// =============================================================================

const machineColumns = `id, name, location, code, sku, status, oil_level, usage_rate, efficiency, online, fragrance, last_refill_at, installed_at`

func scanMachine(sc interface{ Scan(...any) error }) (Machine, error) {
	var m Machine
	err := sc.Scan(&m.ID, &m.Name, &m.Location, &m.Code, &m.Sku, &m.Status, &m.OilLevel,
		&m.UsageRate, &m.Efficiency, &m.Online, &m.Fragrance, &m.LastRefillAt, &m.InstalledAt)
	return m, err
}

type CreateMachineParams struct {
	Name         string
	Location     string
	Code         string
	Sku          string
	Status       string
	OilLevel     int64
	UsageRate    float64
	Efficiency   int64
	Online       bool
	Fragrance    string
	LastRefillAt time.Time
	InstalledAt  time.Time
}

const createMachine = `
INSERT INTO machines (name, location, code, sku, status, oil_level, usage_rate, efficiency, online, fragrance, last_refill_at, installed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + machineColumns

func (q *Queries) CreateMachine(ctx context.Context, arg CreateMachineParams) (Machine, error) {
	row := q.db.QueryRowContext(ctx, createMachine,
		arg.Name, arg.Location, arg.Code, arg.Sku, arg.Status, arg.OilLevel, arg.UsageRate,
		arg.Efficiency, arg.Online, arg.Fragrance, arg.LastRefillAt.UTC(), arg.InstalledAt.UTC())
	return scanMachine(row)
}

const getMachine = `SELECT ` + machineColumns + ` FROM machines WHERE id = ?`

// GetMachine returns sql.ErrNoRows for unknown ids.
func (q *Queries) GetMachine(ctx context.Context, id int64) (Machine, error) {
	return scanMachine(q.db.QueryRowContext(ctx, getMachine, id))
}

const listMachines = `SELECT ` + machineColumns + ` FROM machines ORDER BY id`

func (q *Queries) ListMachines(ctx context.Context) ([]Machine, error) {
	rows, err := q.db.QueryContext(ctx, listMachines)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const countMachines = `SELECT COUNT(*) FROM machines`

func (q *Queries) CountMachines(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMachines).Scan(&n)
	return n, err
}

// =============================================================================
// REFILLS
// =============================================================================

const refillSelect = `
SELECT r.id, r.machine_id, m.name, m.location, r.technician, r.amount_ml, r.level_before, r.level_after,
       r.fragrance_code, r.fragrance_name, r.notes, r.duration_minutes, r.refilled_at
FROM refills r JOIN machines m ON m.id = r.machine_id`

func (q *Queries) scanRefills(rows *sql.Rows) ([]Refill, error) {
	defer func() { _ = rows.Close() }()

	var items []Refill
	for rows.Next() {
		var r Refill
		if err := rows.Scan(&r.ID, &r.MachineID, &r.MachineName, &r.Location, &r.Technician, &r.AmountMl,
			&r.LevelBefore, &r.LevelAfter, &r.FragranceCode, &r.FragranceName, &r.Notes,
			&r.DurationMinutes, &r.RefilledAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type CreateRefillParams struct {
	MachineID       int64
	Technician      string
	AmountMl        int64
	LevelBefore     int64
	LevelAfter      int64
	FragranceCode   string
	FragranceName   string
	Notes           string
	DurationMinutes int64
	RefilledAt      time.Time
}

const createRefill = `
INSERT INTO refills (machine_id, technician, amount_ml, level_before, level_after, fragrance_code, fragrance_name, notes, duration_minutes, refilled_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRefill(ctx context.Context, arg CreateRefillParams) error {
	_, err := q.db.ExecContext(ctx, createRefill, arg.MachineID, arg.Technician, arg.AmountMl,
		arg.LevelBefore, arg.LevelAfter, arg.FragranceCode, arg.FragranceName, arg.Notes,
		arg.DurationMinutes, arg.RefilledAt.UTC())
	return err
}

func (q *Queries) ListRefills(ctx context.Context) ([]Refill, error) {
	rows, err := q.db.QueryContext(ctx, refillSelect+` ORDER BY r.refilled_at DESC, r.id`)
	if err != nil {
		return nil, err
	}
	return q.scanRefills(rows)
}

func (q *Queries) ListRefillsByMachine(ctx context.Context, machineID int64) ([]Refill, error) {
	rows, err := q.db.QueryContext(ctx, refillSelect+` WHERE r.machine_id = ? ORDER BY r.refilled_at DESC, r.id`, machineID)
	if err != nil {
		return nil, err
	}
	return q.scanRefills(rows)
}

// =============================================================================
// ALERTS
// =============================================================================

type CreateAlertParams struct {
	ID        string
	Type      string
	Title     string
	Message   string
	Machine   string
	IsRead    bool
	CreatedAt time.Time
}

const createAlert = `
INSERT INTO alerts (id, type, title, message, machine, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateAlert(ctx context.Context, arg CreateAlertParams) error {
	_, err := q.db.ExecContext(ctx, createAlert, arg.ID, arg.Type, arg.Title, arg.Message,
		arg.Machine, arg.IsRead, arg.CreatedAt.UTC())
	return err
}

const listAlerts = `
SELECT id, type, title, message, machine, is_read, created_at
FROM alerts ORDER BY created_at DESC, id`

func (q *Queries) ListAlerts(ctx context.Context) ([]Alert, error) {
	rows, err := q.db.QueryContext(ctx, listAlerts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Title, &a.Message, &a.Machine, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const markAlertRead = `UPDATE alerts SET is_read = 1 WHERE id = ?`

// MarkAlertRead returns the number of rows updated (0 for unknown ids).
func (q *Queries) MarkAlertRead(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markAlertRead, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markAllAlertsRead = `UPDATE alerts SET is_read = 1 WHERE is_read = 0`

func (q *Queries) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, markAllAlertsRead)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAlert = `DELETE FROM alerts WHERE id = ?`

// DeleteAlert returns the number of rows removed (0 for unknown ids).
func (q *Queries) DeleteAlert(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAlert, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearAlerts = `DELETE FROM alerts`

// ClearAlerts removes every alert and returns how many were removed.
func (q *Queries) ClearAlerts(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearAlerts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// MAINTENANCE VISITS
// =============================================================================

type CreateVisitParams struct {
	MachineID        int64
	Technician       string
	TechnicianRating float64
	TechnicianPhone  string
	Status           string
	Type             string
	Notes            string
	EstimatedMinutes int64
	ScheduledAt      time.Time
}

const createVisit = `
INSERT INTO maintenance_visits (machine_id, technician, technician_rating, technician_phone, status, type, notes, estimated_minutes, scheduled_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateVisit(ctx context.Context, arg CreateVisitParams) error {
	_, err := q.db.ExecContext(ctx, createVisit, arg.MachineID, arg.Technician, arg.TechnicianRating,
		arg.TechnicianPhone, arg.Status, arg.Type, arg.Notes, arg.EstimatedMinutes, arg.ScheduledAt.UTC())
	return err
}

const listVisits = `
SELECT v.id, v.machine_id, m.name, m.location, v.technician, v.technician_rating, v.technician_phone,
       v.status, v.type, v.notes, v.estimated_minutes, v.scheduled_at
FROM maintenance_visits v JOIN machines m ON m.id = v.machine_id
ORDER BY v.scheduled_at, v.id`

func (q *Queries) ListVisits(ctx context.Context) ([]MaintenanceVisit, error) {
	rows, err := q.db.QueryContext(ctx, listVisits)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []MaintenanceVisit
	for rows.Next() {
		var v MaintenanceVisit
		if err := rows.Scan(&v.ID, &v.MachineID, &v.MachineName, &v.Location, &v.Technician,
			&v.TechnicianRating, &v.TechnicianPhone, &v.Status, &v.Type, &v.Notes,
			&v.EstimatedMinutes, &v.ScheduledAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
