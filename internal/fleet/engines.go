// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"strings"

	"github.com/olegiv/aromapure/internal/listquery"
)

// Machine list keys.
const (
	CategoryActive = "Active"
	CategoryGood   = "Good"
	CategoryMedium = "Medium"
	CategoryLow    = "Low"
	CategoryUrgent = "Urgent"

	SortLocation = "location"
	SortName     = "name"
	SortLevel    = "level"
	SortRefill   = "refill"

	// DefaultMachineSort is applied when the request names no sort.
	DefaultMachineSort = SortLocation
)

// MachineEngine filters the machine list.
var MachineEngine = listquery.New(
	listquery.WithCategory(CategoryActive, func(m Machine) bool { return m.Online }),
	listquery.WithCategory(CategoryGood, func(m Machine) bool { return m.OilLevel > GoodAbove }),
	listquery.WithCategory(CategoryMedium, func(m Machine) bool {
		return m.OilLevel > MediumAbove && m.OilLevel <= GoodAbove
	}),
	listquery.WithCategory(CategoryLow, func(m Machine) bool {
		return m.OilLevel > LowAbove && m.OilLevel <= MediumAbove
	}),
	listquery.WithCategory(CategoryUrgent, func(m Machine) bool { return m.OilLevel <= LowAbove }),
	listquery.WithSearch(
		func(m Machine) string { return m.Name },
		func(m Machine) string { return m.Location },
		func(m Machine) string { return m.Code },
	),
	listquery.WithSort(SortLocation, listquery.Ascending(func(m Machine) string { return m.Location })),
	listquery.WithSort(SortName, listquery.Ascending(func(m Machine) string { return m.Name })),
	listquery.WithSort(SortLevel, listquery.Descending(func(m Machine) int { return m.OilLevel })),
	listquery.WithSort(SortRefill, listquery.Descending(func(m Machine) int64 { return m.LastRefillAt.UnixMilli() })),
)

// Refill list keys.
const (
	SortDate   = "date"
	SortAmount = "amount"
)

// NewRefillEngine builds the refill engine with one category per
// technician.
func NewRefillEngine(technicians ...string) *listquery.Engine[Refill] {
	opts := []listquery.Option[Refill]{
		listquery.WithSearch(
			func(r Refill) string { return r.FragranceCode },
			func(r Refill) string { return r.FragranceName },
			func(r Refill) string { return r.MachineName },
		),
		listquery.WithSort(SortDate, listquery.Descending(func(r Refill) int64 { return r.RefilledAt.UnixMilli() })),
		listquery.WithSort(SortAmount, listquery.Descending(func(r Refill) int { return r.AmountMl })),
	}
	for _, tech := range technicians {
		opts = append(opts, listquery.WithCategory(tech, func(r Refill) bool {
			return strings.EqualFold(r.Technician, tech)
		}))
	}
	return listquery.New(opts...)
}

// Technicians returns the distinct technicians in first-seen order.
func Technicians(refills []Refill) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range refills {
		key := strings.ToLower(r.Technician)
		if !seen[key] {
			seen[key] = true
			out = append(out, r.Technician)
		}
	}
	return out
}

// Alert list keys.
const (
	CategoryUnread = "unread"
	SortNewest     = "newest"
)

// AlertEngine filters the alert list.
var AlertEngine = listquery.New(
	listquery.WithCategory(CategoryUnread, func(a Alert) bool { return !a.IsRead }),
	listquery.WithCategory(AlertError, alertType(AlertError)),
	listquery.WithCategory(AlertWarning, alertType(AlertWarning)),
	listquery.WithCategory(AlertSuccess, alertType(AlertSuccess)),
	listquery.WithCategory(AlertInfo, alertType(AlertInfo)),
	listquery.WithSearch(
		func(a Alert) string { return a.Title },
		func(a Alert) string { return a.Message },
		func(a Alert) string { return a.Machine },
	),
	listquery.WithSort(SortNewest, listquery.Descending(func(a Alert) int64 { return a.CreatedAt.UnixMilli() })),
)

func alertType(t string) func(Alert) bool {
	return func(a Alert) bool { return a.Type == t }
}

// Visit list keys.
const (
	CategoryUpcoming  = "upcoming"
	CategoryCompleted = "completed"
)

// VisitEngine filters maintenance visits.
var VisitEngine = listquery.New(
	listquery.WithCategory(CategoryUpcoming, Visit.Upcoming),
	listquery.WithCategory(CategoryCompleted, func(v Visit) bool { return v.Status == VisitCompleted }),
	listquery.WithSearch(
		func(v Visit) string { return v.Technician },
		func(v Visit) string { return v.MachineName },
		func(v Visit) string { return v.Location },
		func(v Visit) string { return v.Type },
	),
	listquery.WithSort(SortDate, listquery.AscendingBy(func(v Visit) int64 { return v.ScheduledAt.UnixMilli() })),
)
