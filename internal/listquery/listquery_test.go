// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type machine struct {
	Name     string
	Location string
	OilLevel int
	Online   bool
}

func machineEngine() *Engine[machine] {
	return New(
		WithCategory("Active", func(m machine) bool { return m.Online }),
		WithCategory("Low", func(m machine) bool { return m.OilLevel > 10 && m.OilLevel <= 30 }),
		WithCategory("Urgent", func(m machine) bool { return m.OilLevel <= 10 }),
		WithSearch(
			func(m machine) string { return m.Name },
			func(m machine) string { return m.Location },
		),
		WithSort("name", Ascending(func(m machine) string { return m.Name })),
		WithSort("location", Ascending(func(m machine) string { return m.Location })),
		WithSort("level", Descending(func(m machine) int { return m.OilLevel })),
	)
}

func sampleMachines() []machine {
	return []machine{
		{Name: "Pro 3000", Location: "Main Office", OilLevel: 75, Online: true},
		{Name: "Mini 1000", Location: "Café Lobby", OilLevel: 8, Online: true},
		{Name: "Classic 2000", Location: "Break Room", OilLevel: 18, Online: false},
	}
}

func names(ms []machine) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestApply_EmptyRecords(t *testing.T) {
	e := machineEngine()

	for _, q := range []Query{{}, {Category: "Active"}, {Text: "pro"}, {SortKey: "name"}} {
		got := e.Apply(nil, q)
		require.NotNil(t, got)
		assert.Empty(t, got)

		got = e.Apply([]machine{}, q)
		assert.Empty(t, got)
	}
}

func TestApply_AllIsIdentity(t *testing.T) {
	e := machineEngine()
	in := sampleMachines()

	for _, cat := range []string{"all", "All", "ALL", ""} {
		got := e.Apply(in, Query{Category: cat})
		assert.Equal(t, in, got, "category %q", cat)
	}
}

func TestApply_CategoryPreservesOrder(t *testing.T) {
	e := machineEngine()

	got := e.Apply(sampleMachines(), Query{Category: "Active"})
	assert.Equal(t, []string{"Pro 3000", "Mini 1000"}, names(got))

	got = e.Apply(sampleMachines(), Query{Category: "urgent"})
	assert.Equal(t, []string{"Mini 1000"}, names(got))
}

func TestApply_UnknownCategoryMatchesNothing(t *testing.T) {
	e := machineEngine()
	in := sampleMachines()

	got := e.Apply(in, Query{Category: "Sparkling"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, in, 3)

	assert.Equal(t, in, e.Apply(in, Query{Category: ""}))
	assert.Equal(t, in, e.Apply(in, Query{Category: "ALL"}))
}

func TestApply_TextSearch(t *testing.T) {
	e := machineEngine()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"case insensitive", "PRO", []string{"Pro 3000"}},
		{"second field", "break", []string{"Classic 2000"}},
		{"accent folded", "cafe", []string{"Mini 1000"}},
		{"trimmed", "  mini ", []string{"Mini 1000"}},
		{"common substring", "0", []string{"Pro 3000", "Mini 1000", "Classic 2000"}},
		{"no match", "zz_no_match", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(sampleMachines(), Query{Text: tt.text})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApply_Sort(t *testing.T) {
	e := machineEngine()

	got := e.Apply(sampleMachines(), Query{SortKey: "name"})
	assert.Equal(t, []string{"Classic 2000", "Mini 1000", "Pro 3000"}, names(got))

	got = e.Apply(sampleMachines(), Query{SortKey: "level"})
	assert.Equal(t, []string{"Pro 3000", "Classic 2000", "Mini 1000"}, names(got))

	got = e.Apply(sampleMachines(), Query{SortKey: "location"})
	assert.Equal(t, []string{"Break Room", "Café Lobby", "Main Office"}, []string{got[0].Location, got[1].Location, got[2].Location})
}

func TestApply_UnknownSortKeyKeepsOrder(t *testing.T) {
	e := machineEngine()
	in := sampleMachines()

	assert.Equal(t, in, e.Apply(in, Query{SortKey: "efficiency"}))
	// Sort keys are exact.
	assert.Equal(t, in, e.Apply(in, Query{SortKey: "Name"}))
}

func TestApply_StableSort(t *testing.T) {
	e := machineEngine()
	in := []machine{
		{Name: "B", OilLevel: 50},
		{Name: "A1", OilLevel: 20},
		{Name: "C", OilLevel: 50},
		{Name: "A2", OilLevel: 20},
		{Name: "D", OilLevel: 50},
	}

	first := e.Apply(in, Query{SortKey: "level"})
	second := e.Apply(in, Query{SortKey: "level"})

	assert.Equal(t, []string{"B", "C", "D", "A1", "A2"}, names(first))
	assert.Equal(t, first, second)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	e := machineEngine()
	in := sampleMachines()
	snapshot := append([]machine(nil), in...)

	got := e.Apply(in, Query{SortKey: "name"})
	require.Len(t, got, 3)
	assert.Equal(t, snapshot, in)

	got[0].Name = "changed"
	assert.Equal(t, snapshot, in, "result must not alias input")
}

func TestApply_CombinedStages(t *testing.T) {
	e := machineEngine()

	got := e.Apply(sampleMachines(), Query{Category: "Active", Text: "o", SortKey: "name"})
	assert.Equal(t, []string{"Mini 1000", "Pro 3000"}, names(got))
}

func TestCounts(t *testing.T) {
	e := machineEngine()

	counts := e.Counts(sampleMachines())
	assert.Equal(t, map[string]int{
		All:      3,
		"Active": 2,
		"Low":    1,
		"Urgent": 1,
	}, counts)
}

func TestRegistrationOrderAndReplacement(t *testing.T) {
	e := New(
		WithCategory("Active", func(m machine) bool { return false }),
		WithCategory("active", func(m machine) bool { return m.Online }),
		WithSort("name", Descending(func(m machine) string { return m.Name })),
		WithSort("level", Descending(func(m machine) int { return m.OilLevel })),
		WithSort("name", Ascending(func(m machine) string { return m.Name })),
	)

	assert.Equal(t, []string{"Active"}, e.Categories())
	assert.Equal(t, []string{"name", "level"}, e.SortKeys())
	assert.Len(t, e.Apply(sampleMachines(), Query{Category: "Active"}), 2)
	assert.Equal(t, "Classic 2000", e.Apply(sampleMachines(), Query{SortKey: "name"})[0].Name)

	assert.True(t, e.HasCategory(""))
	assert.True(t, e.HasCategory("ALL"))
	assert.True(t, e.HasCategory("active"))
	assert.False(t, e.HasCategory("Low"))
	assert.True(t, e.HasSortKey("level"))
	assert.False(t, e.HasSortKey("location"))
}

func TestSearchWithoutFields(t *testing.T) {
	e := New[machine]()

	assert.Empty(t, e.Apply(sampleMachines(), Query{Text: "pro"}))
	assert.Len(t, e.Apply(sampleMachines(), Query{Text: "   "}), 3)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "cafe lobby", Normalize("Café LOBBY"))
	assert.Equal(t, Normalize("STRASSE"), Normalize("strasse"))
	// Non-Latin text is searchable by its ASCII transliteration.
	assert.Equal(t, Normalize("Straße"), Normalize("strasse"))
	assert.Contains(t, Normalize("北京 Office"), "bei")
}

func TestAscendingBy(t *testing.T) {
	c := AscendingBy(func(m machine) int { return m.OilLevel })
	assert.Negative(t, c(machine{OilLevel: 1}, machine{OilLevel: 2}))
	assert.Zero(t, c(machine{OilLevel: 2}, machine{OilLevel: 2}))
	assert.Positive(t, c(machine{OilLevel: 3}, machine{OilLevel: 2}))
}
