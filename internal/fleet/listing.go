// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"context"

	"github.com/olegiv/aromapure/internal/listquery"
)

// Listing is one page of a filtered list together with the chip counts
// and the keys the client may use.
type Listing[T any] struct {
	Items      []T                  `json:"items"`
	Counts     map[string]int       `json:"counts"`
	Categories []string             `json:"categories"`
	SortKeys   []string             `json:"sort_keys"`
	Query      listquery.Query      `json:"query"`
	Pagination listquery.Pagination `json:"pagination"`
}

// list applies q and paginates. A sort key the engine does not know is
// dropped from the echoed query since it leaves records unsorted.
func list[T any](e *listquery.Engine[T], records []T, q listquery.Query, page, perPage int) Listing[T] {
	if !e.HasSortKey(q.SortKey) {
		q.SortKey = ""
	}
	items, p := listquery.Paginate(e.Apply(records, q), page, perPage)
	return Listing[T]{
		Items:      items,
		Counts:     e.Counts(records),
		Categories: e.Categories(),
		SortKeys:   e.SortKeys(),
		Query:      q,
		Pagination: p,
	}
}

// ListMachines filters machines. An empty sort key uses DefaultMachineSort.
func (s *Service) ListMachines(ctx context.Context, q listquery.Query, page, perPage int) (Listing[Machine], error) {
	machines, err := s.Machines(ctx)
	if err != nil {
		return Listing[Machine]{}, err
	}
	if q.SortKey == "" {
		q.SortKey = DefaultMachineSort
	}
	return list(MachineEngine, machines, q, page, perPage), nil
}

// ListRefills filters refill history, optionally limited to one machine.
// An empty sort key keeps newest first.
func (s *Service) ListRefills(ctx context.Context, machineID int64, q listquery.Query, page, perPage int) (Listing[Refill], error) {
	var refills []Refill
	var err error
	if machineID > 0 {
		refills, err = s.MachineRefills(ctx, machineID)
	} else {
		refills, err = s.Refills(ctx)
	}
	if err != nil {
		return Listing[Refill]{}, err
	}
	if q.SortKey == "" {
		q.SortKey = SortDate
	}
	return list(NewRefillEngine(Technicians(refills)...), refills, q, page, perPage), nil
}

// ListAlerts filters alerts, newest first by default.
func (s *Service) ListAlerts(ctx context.Context, q listquery.Query) (Listing[Alert], error) {
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return Listing[Alert]{}, err
	}
	if q.SortKey == "" {
		q.SortKey = SortNewest
	}
	return list(AlertEngine, alerts, q, 1, 0), nil
}

// ListVisits filters maintenance visits, soonest first by default.
func (s *Service) ListVisits(ctx context.Context, q listquery.Query) (Listing[Visit], error) {
	visits, err := s.Visits(ctx)
	if err != nil {
		return Listing[Visit]{}, err
	}
	if q.SortKey == "" {
		q.SortKey = SortDate
	}
	return list(VisitEngine, visits, q, 1, 0), nil
}
