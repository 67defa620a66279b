// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listquery turns a record collection and a query (category filter,
// free-text search, sort key) into an ordered view. An Engine is built once
// per record type and is safe for concurrent use.
package listquery

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
)

// All is the category sentinel that disables category filtering.
const All = "all"

// Query describes a single list request. Zero values disable the
// corresponding stage.
type Query struct {
	Category string `json:"category,omitempty"`
	Text     string `json:"text,omitempty"`
	SortKey  string `json:"sort_key,omitempty"`
}

// Predicate reports whether a record belongs to a category.
type Predicate[T any] func(T) bool

// Comparator orders two records: negative when a sorts before b.
type Comparator[T any] func(a, b T) int

type category[T any] struct {
	name string
	pred Predicate[T]
}

type sorter[T any] struct {
	key string
	cmp Comparator[T]
}

// Engine applies category, search and sort stages to records of type T.
type Engine[T any] struct {
	categories []category[T]
	search     []func(T) string
	sorts      []sorter[T]
}

// Option configures an Engine.
type Option[T any] func(*Engine[T])

// New builds an Engine from options. Later registrations of the same
// category or sort key replace earlier ones.
func New[T any](opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCategory registers a named category predicate. Names match
// case-insensitively.
func WithCategory[T any](name string, pred func(T) bool) Option[T] {
	return func(e *Engine[T]) {
		for i := range e.categories {
			if strings.EqualFold(e.categories[i].name, name) {
				e.categories[i].pred = pred
				return
			}
		}
		e.categories = append(e.categories, category[T]{name: name, pred: pred})
	}
}

// WithSearch registers the text fields searched by Query.Text.
func WithSearch[T any](fields ...func(T) string) Option[T] {
	return func(e *Engine[T]) {
		e.search = append(e.search, fields...)
	}
}

// WithSort registers a comparator under a sort key. Keys match exactly.
func WithSort[T any](key string, c Comparator[T]) Option[T] {
	return func(e *Engine[T]) {
		for i := range e.sorts {
			if e.sorts[i].key == key {
				e.sorts[i].cmp = c
				return
			}
		}
		e.sorts = append(e.sorts, sorter[T]{key: key, cmp: c})
	}
}

// Apply returns the records matching q, in sorted order when q.SortKey is
// registered and in input order otherwise. A category that is neither All
// nor registered matches nothing. The input slice is never modified and
// the result never aliases it.
func (e *Engine[T]) Apply(records []T, q Query) []T {
	pred, ok := e.predicate(q.Category)
	if !ok {
		return []T{}
	}
	out := make([]T, 0, len(records))
	needle := Normalize(strings.TrimSpace(q.Text))

	for _, r := range records {
		if pred != nil && !pred(r) {
			continue
		}
		if needle != "" && !e.matches(r, needle) {
			continue
		}
		out = append(out, r)
	}

	if c := e.comparator(q.SortKey); c != nil {
		slices.SortStableFunc(out, c)
	}
	return out
}

// Counts returns the number of records in each registered category, plus
// the total under All.
func (e *Engine[T]) Counts(records []T) map[string]int {
	counts := make(map[string]int, len(e.categories)+1)
	counts[All] = len(records)
	for _, c := range e.categories {
		n := 0
		for _, r := range records {
			if c.pred(r) {
				n++
			}
		}
		counts[c.name] = n
	}
	return counts
}

// Categories returns the registered category names in registration order.
func (e *Engine[T]) Categories() []string {
	names := make([]string, len(e.categories))
	for i, c := range e.categories {
		names[i] = c.name
	}
	return names
}

// SortKeys returns the registered sort keys in registration order.
func (e *Engine[T]) SortKeys() []string {
	keys := make([]string, len(e.sorts))
	for i, s := range e.sorts {
		keys[i] = s.key
	}
	return keys
}

// HasCategory reports whether name is empty, All or a registered category.
func (e *Engine[T]) HasCategory(name string) bool {
	_, ok := e.predicate(name)
	return ok
}

// HasSortKey reports whether key is a registered sort key.
func (e *Engine[T]) HasSortKey(key string) bool {
	return e.comparator(key) != nil
}

// predicate returns a nil predicate for empty and All. ok is false when
// name is not registered.
func (e *Engine[T]) predicate(name string) (pred Predicate[T], ok bool) {
	if name == "" || strings.EqualFold(name, All) {
		return nil, true
	}
	for _, c := range e.categories {
		if strings.EqualFold(c.name, name) {
			return c.pred, true
		}
	}
	return nil, false
}

func (e *Engine[T]) comparator(key string) Comparator[T] {
	if key == "" {
		return nil
	}
	for _, s := range e.sorts {
		if s.key == key {
			return s.cmp
		}
	}
	return nil
}

func (e *Engine[T]) matches(r T, needle string) bool {
	for _, field := range e.search {
		if strings.Contains(Normalize(field(r)), needle) {
			return true
		}
	}
	return false
}

// Normalize folds case and transliterates to ASCII so that "Café" and
// "CAFE" compare equal.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(unidecode.Unidecode(s))
}

// Ascending orders records by a text field using normalized comparison,
// falling back to the raw text to keep the order total.
func Ascending[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		fa, fb := field(a), field(b)
		if c := strings.Compare(Normalize(fa), Normalize(fb)); c != 0 {
			return c
		}
		return strings.Compare(fa, fb)
	}
}

// AscendingBy orders records by an ordered field, smallest first.
func AscendingBy[T any, K cmp.Ordered](field func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// Descending orders records by an ordered field, largest first.
func Descending[T any, K cmp.Ordered](field func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(field(b), field(a))
	}
}
