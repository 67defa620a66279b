// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps a DBTX with the application's queries.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Slot struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Username  string
	RequestID string
	Metadata  string
	CreatedAt time.Time
}

type Machine struct {
	ID           int64
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

type Refill struct {
	ID              int64
	MachineID       int64
	MachineName     string
	Location        string
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

type Alert struct {
	ID        string
	Type      string
	Title     string
	Message   string
	Machine   string
	IsRead    bool
	CreatedAt time.Time
}

type MaintenanceVisit struct {
	ID               int64
	MachineID        int64
	MachineName      string
	Location         string
	Technician       string
	TechnicianRating float64
	TechnicianPhone  string
	Status           string
	Type             string
	Notes            string
	EstimatedMinutes int64
	ScheduledAt      time.Time
}
