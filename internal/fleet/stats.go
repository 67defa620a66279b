// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"cmp"
	"context"
	"math"
	"slices"
)

// Stats summarizes the fleet for the dashboard.
type Stats struct {
	Total        int     `json:"total"`
	Online       int     `json:"online"`
	NeedsRefill  int     `json:"needs_refill"`
	AverageLevel float64 `json:"average_level"`
}

// ComputeStats summarizes machines. AverageLevel is rounded to one decimal.
func ComputeStats(machines []Machine) Stats {
	st := Stats{Total: len(machines)}
	sum := 0
	for _, m := range machines {
		if m.Online {
			st.Online++
		}
		if m.NeedsRefill() {
			st.NeedsRefill++
		}
		sum += m.OilLevel
	}
	if st.Total > 0 {
		st.AverageLevel = math.Round(float64(sum)/float64(st.Total)*10) / 10
	}
	return st
}

// Stats returns the dashboard summary.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	machines, err := s.Machines(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(machines), nil
}

// MonthCount aggregates refills in one calendar month (YYYY-MM).
type MonthCount struct {
	Month    string `json:"month"`
	Refills  int    `json:"refills"`
	AmountMl int    `json:"amount_ml"`
}

// NamedCount is a labelled counter.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analytics aggregates refill and alert history.
type Analytics struct {
	RefillsPerMonth []MonthCount   `json:"refills_per_month"`
	Fragrances      []NamedCount   `json:"fragrances"`
	MachineRefills  []NamedCount   `json:"machine_refills"`
	AlertTypes      map[string]int `json:"alert_types"`
	TotalAmountMl   int            `json:"total_amount_ml"`
}

// ComputeAnalytics aggregates refills and alerts. Months are ascending;
// named counts are by count descending, then name.
func ComputeAnalytics(refills []Refill, alerts []Alert) Analytics {
	a := Analytics{AlertTypes: make(map[string]int)}

	months := make(map[string]*MonthCount)
	fragrances := make(map[string]int)
	machines := make(map[string]int)

	for _, r := range refills {
		key := r.RefilledAt.UTC().Format("2006-01")
		mc, ok := months[key]
		if !ok {
			mc = &MonthCount{Month: key}
			months[key] = mc
		}
		mc.Refills++
		mc.AmountMl += r.AmountMl
		a.TotalAmountMl += r.AmountMl

		fragrances[r.FragranceName]++
		machines[r.MachineName]++
	}

	for _, mc := range months {
		a.RefillsPerMonth = append(a.RefillsPerMonth, *mc)
	}
	slices.SortFunc(a.RefillsPerMonth, func(x, y MonthCount) int { return cmp.Compare(x.Month, y.Month) })

	a.Fragrances = rank(fragrances)
	a.MachineRefills = rank(machines)

	for _, al := range alerts {
		a.AlertTypes[al.Type]++
	}
	return a
}

func rank(counts map[string]int) []NamedCount {
	out := make([]NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, NamedCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(x, y NamedCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return out
}

// Analytics returns the analytics page aggregates.
func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	refills, err := s.Refills(ctx)
	if err != nil {
		return Analytics{}, err
	}
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return Analytics{}, err
	}
	return ComputeAnalytics(refills, alerts), nil
}
