// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listquery

// Pagination describes one page of a filtered list.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	PerPage     int  `json:"per_page"`
	HasPrev     bool `json:"has_prev"`
	HasNext     bool `json:"has_next"`
	PrevPage    int  `json:"prev_page,omitempty"`
	NextPage    int  `json:"next_page,omitempty"`
}

// Paginate returns the requested page of items. page is clamped to
// [1, TotalPages]; perPage <= 0 puts everything on a single page.
func Paginate[T any](items []T, page, perPage int) ([]T, Pagination) {
	total := len(items)
	if perPage <= 0 {
		perPage = max(total, 1)
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)

	p := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PerPage:     perPage,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
	}
	if p.HasPrev {
		p.PrevPage = page - 1
	}
	if p.HasNext {
		p.NextPage = page + 1
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start >= total {
		return []T{}, p
	}
	return items[start:end:end], p
}
