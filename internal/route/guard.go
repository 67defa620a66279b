// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package route

// SessionState is the read-only view of authentication the guard needs.
type SessionState interface {
	Authenticated() bool
}

// Outcome of a route evaluation.
type Outcome int

const (
	Denied Outcome = iota
	Allowed
)

func (o Outcome) String() string {
	if o == Allowed {
		return "allowed"
	}
	return "denied"
}

// Decision is the result of Resolve. Target is set only when Denied.
// Entry and Params are set whenever the path matched the table.
type Decision struct {
	Outcome Outcome
	Target  string
	Entry   Entry
	Params  map[string]string
}

// Allowed reports whether the view may be rendered.
func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

// Param returns a positional parameter or "".
func (d Decision) Param(name string) string {
	return d.Params[name]
}

// Guard evaluates navigation requests against a route table.
type Guard struct {
	table Table
}

// NewGuard creates a guard over table.
func NewGuard(table Table) *Guard {
	return &Guard{table: table}
}

// Resolve decides whether path may be rendered for state. Unknown paths and
// protected paths without an authenticated session are redirected to the
// login path. A nil state counts as logged out.
func (g *Guard) Resolve(path string, state SessionState) Decision {
	entry, params, ok := g.table.Match(path)
	if !ok {
		return Decision{Outcome: Denied, Target: LoginPath}
	}

	d := Decision{Entry: entry, Params: params}
	if !entry.Protected || (state != nil && state.Authenticated()) {
		d.Outcome = Allowed
		return d
	}

	d.Outcome = Denied
	d.Target = LoginPath
	return d
}
