// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fleet serves the air-freshener fleet: machines, refills, alerts
// and maintenance visits, with the list engines used by each page.
package fleet

import (
	"errors"
	"time"

	"github.com/olegiv/aromapure/internal/store"
)

// ErrNotFound is returned for unknown machine or alert ids.
var ErrNotFound = errors.New("not found")

// Oil level bands in percent.
const (
	GoodAbove   = 60
	MediumAbove = 30
	LowAbove    = 10

	// RefillThreshold is the level at or below which a machine needs a refill.
	RefillThreshold = 30
)

// Machine is an installed diffuser.
type Machine struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Code         string    `json:"code"`
	Sku          string    `json:"sku"`
	Status       string    `json:"status"`
	OilLevel     int       `json:"oil_level"`
	UsageRate    float64   `json:"usage_rate"`
	Efficiency   int       `json:"efficiency"`
	Online       bool      `json:"online"`
	Fragrance    string    `json:"fragrance"`
	LastRefillAt time.Time `json:"last_refill_at"`
	InstalledAt  time.Time `json:"installed_at"`
}

// LevelBand names the oil level band: good, medium, low or urgent.
func (m Machine) LevelBand() string {
	switch {
	case m.OilLevel > GoodAbove:
		return "good"
	case m.OilLevel > MediumAbove:
		return "medium"
	case m.OilLevel > LowAbove:
		return "low"
	default:
		return "urgent"
	}
}

// NeedsRefill reports whether the level is at or below RefillThreshold.
func (m Machine) NeedsRefill() bool {
	return m.OilLevel <= RefillThreshold
}

// Health summarizes the machine for the device grid.
func (m Machine) Health() string {
	switch {
	case !m.Online:
		return "offline"
	case m.OilLevel <= LowAbove:
		return "critical"
	case m.NeedsRefill():
		return "warning"
	default:
		return "healthy"
	}
}

// Refill is one oil refill performed by a technician.
type Refill struct {
	ID              int64     `json:"id"`
	MachineID       int64     `json:"machine_id"`
	MachineName     string    `json:"machine_name"`
	Location        string    `json:"location"`
	Technician      string    `json:"technician"`
	AmountMl        int       `json:"amount_ml"`
	LevelBefore     int       `json:"level_before"`
	LevelAfter      int       `json:"level_after"`
	FragranceCode   string    `json:"fragrance_code"`
	FragranceName   string    `json:"fragrance_name"`
	Notes           string    `json:"notes,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	RefilledAt      time.Time `json:"refilled_at"`
}

// Alert types.
const (
	AlertError   = "error"
	AlertWarning = "warning"
	AlertSuccess = "success"
	AlertInfo    = "info"
)

// Alert is a fleet notification.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Machine   string    `json:"machine,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Visit statuses.
const (
	VisitAssigned  = "assigned"
	VisitPending   = "pending"
	VisitCompleted = "completed"
)

// Visit is a scheduled or completed maintenance visit.
type Visit struct {
	ID               int64     `json:"id"`
	MachineID        int64     `json:"machine_id"`
	MachineName      string    `json:"machine_name"`
	Location         string    `json:"location"`
	Technician       string    `json:"technician"`
	TechnicianRating float64   `json:"technician_rating"`
	TechnicianPhone  string    `json:"technician_phone,omitempty"`
	Status           string    `json:"status"`
	Type             string    `json:"type"`
	Notes            string    `json:"notes,omitempty"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	ScheduledAt      time.Time `json:"scheduled_at"`
}

// Upcoming reports whether the visit has not happened yet.
func (v Visit) Upcoming() bool {
	return v.Status == VisitAssigned || v.Status == VisitPending
}

func machineFromStore(m store.Machine) Machine {
	return Machine{
		ID:           m.ID,
		Name:         m.Name,
		Location:     m.Location,
		Code:         m.Code,
		Sku:          m.Sku,
		Status:       m.Status,
		OilLevel:     int(m.OilLevel),
		UsageRate:    m.UsageRate,
		Efficiency:   int(m.Efficiency),
		Online:       m.Online,
		Fragrance:    m.Fragrance,
		LastRefillAt: m.LastRefillAt,
		InstalledAt:  m.InstalledAt,
	}
}

func refillFromStore(r store.Refill) Refill {
	return Refill{
		ID:              r.ID,
		MachineID:       r.MachineID,
		MachineName:     r.MachineName,
		Location:        r.Location,
		Technician:      r.Technician,
		AmountMl:        int(r.AmountMl),
		LevelBefore:     int(r.LevelBefore),
		LevelAfter:      int(r.LevelAfter),
		FragranceCode:   r.FragranceCode,
		FragranceName:   r.FragranceName,
		Notes:           r.Notes,
		DurationMinutes: int(r.DurationMinutes),
		RefilledAt:      r.RefilledAt,
	}
}

func alertFromStore(a store.Alert) Alert {
	return Alert{
		ID:        a.ID,
		Type:      a.Type,
		Title:     a.Title,
		Message:   a.Message,
		Machine:   a.Machine,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
}

func visitFromStore(v store.MaintenanceVisit) Visit {
	return Visit{
		ID:               v.ID,
		MachineID:        v.MachineID,
		MachineName:      v.MachineName,
		Location:         v.Location,
		Technician:       v.Technician,
		TechnicianRating: v.TechnicianRating,
		TechnicianPhone:  v.TechnicianPhone,
		Status:           v.Status,
		Type:             v.Type,
		Notes:            v.Notes,
		EstimatedMinutes: int(v.EstimatedMinutes),
		ScheduledAt:      v.ScheduledAt,
	}
}

func convert[S, D any](in []S, fn func(S) D) []D {
	out := make([]D, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
