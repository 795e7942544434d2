// Package query filters and summarizes report collections for the authority dashboard.
// Everything here is pure: no I/O, no shared state, inputs are never mutated.
package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

// All is the dashboard's "no selection" value. It behaves like an empty field.
const All = "all"

// Filter is an immutable filter specification. Zero value matches everything.
type Filter struct {
	// Search is matched case-insensitively against location, country, state and ID.
	Search   string          `json:"search,omitempty"`
	Country  string          `json:"country,omitempty"`
	State    string          `json:"state,omitempty"`
	Category domain.Category `json:"type,omitempty"`
	Status   domain.Status   `json:"status,omitempty"`
}

// Stats are the dashboard counters over a filtered set.
type Stats struct {
	Total    int `json:"total"`
	Illegal  int `json:"illegal"`
	Legal    int `json:"legal"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

// Result bundles a filtered view with its counters.
type Result struct {
	Reports []*domain.Report `json:"items"`
	Stats   Stats            `json:"stats"`
}

// Empty is true when nothing matched; callers show a "no results" state.
func (r Result) Empty() bool {
	return len(r.Reports) == 0
}

func set(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// IsZero reports whether the filter matches every report.
// A state without a country is ignored.
func (f Filter) IsZero() bool {
	return !set(f.Search) && !set(f.Country) && !set(string(f.Category)) && !set(string(f.Status))
}

// matcher is a compiled Filter. It owns a case folder, so it must not be shared
// between goroutines.
type matcher struct {
	filter Filter
	search string
	fold   cases.Caser
}

func compile(f Filter) *matcher {
	m := &matcher{filter: f, fold: cases.Fold()}
	if set(f.Search) {
		m.search = m.normalize(strings.TrimSpace(f.Search))
	}
	return m
}

func (m *matcher) normalize(s string) string {
	return m.fold.String(norm.NFC.String(s))
}

func (m *matcher) match(r *domain.Report) bool {
	f := m.filter

	if m.search != "" {
		hit := strings.Contains(m.normalize(r.Location), m.search) ||
			strings.Contains(m.normalize(r.Country), m.search) ||
			strings.Contains(m.normalize(r.State), m.search) ||
			strings.Contains(m.normalize(r.ID), m.search)
		if !hit {
			return false
		}
	}

	if set(f.Country) {
		if r.Country != f.Country {
			return false
		}
		// State options depend on the selected country.
		if set(f.State) && r.State != f.State {
			return false
		}
	}

	if set(string(f.Category)) && r.Category != f.Category {
		return false
	}
	if set(string(f.Status)) && r.Status != f.Status {
		return false
	}
	return true
}

// Match reports whether a single report satisfies the filter.
func (f Filter) Match(r *domain.Report) bool {
	return compile(f).match(r)
}

// Apply returns the reports matching f, in input order. The result is never nil.
func Apply(reports []*domain.Report, f Filter) []*domain.Report {
	m := compile(f)
	out := make([]*domain.Report, 0, len(reports))
	for _, r := range reports {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts the reports of an already filtered set.
func Summarize(reports []*domain.Report) Stats {
	s := Stats{Total: len(reports)}
	for _, r := range reports {
		switch {
		case r.Category.Illegal():
			s.Illegal++
		case r.Category == domain.CategoryLegal:
			s.Legal++
		}
		switch r.Status {
		case domain.StatusResolved:
			s.Resolved++
		case domain.StatusPending:
			s.Pending++
		}
	}
	return s
}

// Run filters and summarizes in one pass of the caller's collection.
func Run(reports []*domain.Report, f Filter) Result {
	filtered := Apply(reports, f)
	return Result{
		Reports: filtered,
		Stats:   Summarize(filtered),
	}
}
