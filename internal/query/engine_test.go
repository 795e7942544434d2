package query_test

import (
	"testing"
	"time"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(id string, cat domain.Category, status domain.Status, country, state, location string) *domain.Report {
	violations := []string{}
	if cat != domain.CategoryLegal {
		violations = []string{"No proper permits"}
	}
	return &domain.Report{
		ID:           id,
		Category:     cat,
		Location:     location,
		Country:      country,
		State:        state,
		CreatedAt:    time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		Confidence:   90,
		Violations:   violations,
		Status:       status,
		ReporterRole: domain.RoleCitizen,
	}
}

func fixture() []*domain.Report {
	return []*domain.Report{
		report("RPT-0001", domain.CategoryLegal, domain.StatusResolved, "India", "Maharashtra", "Mumbai, Maharashtra"),
		report("RPT-0002", domain.CategoryOversized, domain.StatusPending, "India", "Karnataka", "Bangalore, Karnataka"),
		report("RPT-0003", domain.CategoryDamaged, domain.StatusInvestigating, "Brazil", "São Paulo", "Campinas, São Paulo"),
		report("RPT-0004", domain.CategoryObscene, domain.StatusPending, "Germany", "Bavaria", "Munich, Bavaria"),
		report("RPT-0005", domain.CategoryResolved, domain.StatusResolved, "India", "Karnataka", "Mysore, Karnataka"),
		report("RPT-0006", domain.CategoryLegal, domain.StatusPending, "France", "Île-de-France", "Paris, Île-de-France"),
	}
}

func ids(reports []*domain.Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	cases := []struct {
		Name   string
		Filter query.Filter
		Want   []string
	}{
		{"zero filter keeps everything in order", query.Filter{}, []string{"RPT-0001", "RPT-0002", "RPT-0003", "RPT-0004", "RPT-0005", "RPT-0006"}},
		{"all sentinel behaves like unset", query.Filter{Country: "all", State: "all", Category: "all", Status: "all"}, []string{"RPT-0001", "RPT-0002", "RPT-0003", "RPT-0004", "RPT-0005", "RPT-0006"}},
		{"country exact match", query.Filter{Country: "India"}, []string{"RPT-0001", "RPT-0002", "RPT-0005"}},
		{"country is not a substring match", query.Filter{Country: "Ind"}, []string{}},
		{"state within country", query.Filter{Country: "India", State: "Karnataka"}, []string{"RPT-0002", "RPT-0005"}},
		{"state without country is ignored", query.Filter{State: "Karnataka"}, []string{"RPT-0001", "RPT-0002", "RPT-0003", "RPT-0004", "RPT-0005", "RPT-0006"}},
		{"category", query.Filter{Category: domain.CategoryLegal}, []string{"RPT-0001", "RPT-0006"}},
		{"status", query.Filter{Status: domain.StatusPending}, []string{"RPT-0002", "RPT-0004", "RPT-0006"}},
		{"search by id", query.Filter{Search: "RPT-0002"}, []string{"RPT-0002"}},
		{"search is case-insensitive", query.Filter{Search: "rpt-0004"}, []string{"RPT-0004"}},
		{"search matches location", query.Filter{Search: "mysore"}, []string{"RPT-0005"}},
		{"search matches country", query.Filter{Search: "GERMAN"}, []string{"RPT-0004"}},
		{"search matches state with accents", query.Filter{Search: "SÃO"}, []string{"RPT-0003"}},
		{"search folds non-ascii case", query.Filter{Search: "île"}, []string{"RPT-0006"}},
		{"search ANDs with other filters", query.Filter{Search: "karnataka", Status: domain.StatusPending}, []string{"RPT-0002"}},
		{"search whitespace is trimmed", query.Filter{Search: "  munich "}, []string{"RPT-0004"}},
		{"nothing matches", query.Filter{Country: "India", Category: domain.CategoryObscene}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			got := query.Apply(fixture(), tc.Filter)
			require.NotNil(t, got)
			assert.Equal(t, tc.Want, ids(got))
		})
	}
}

func TestApplyProperties(t *testing.T) {
	filters := []query.Filter{
		{},
		{Country: "India"},
		{Search: "a"},
		{Category: domain.CategoryOversized, Status: domain.StatusPending},
		{Country: "India", State: "Karnataka", Search: "rpt"},
		{Status: domain.StatusResolved},
	}

	for _, f := range filters {
		input := fixture()
		snapshot := ids(input)

		got := query.Apply(input, f)

		// Subset: every result is one of the input pointers.
		members := make(map[*domain.Report]bool, len(input))
		for _, r := range input {
			members[r] = true
		}
		for _, r := range got {
			assert.True(t, members[r], "invented record %s", r.ID)
		}

		// Idempotent.
		assert.Equal(t, ids(got), ids(query.Apply(got, f)))

		// Input untouched.
		assert.Equal(t, snapshot, ids(input))

		stats := query.Summarize(got)
		assert.LessOrEqual(t, stats.Legal+stats.Illegal, stats.Total)
		assert.LessOrEqual(t, stats.Resolved, stats.Total)
		assert.LessOrEqual(t, stats.Pending, stats.Total)
	}
}

func TestRunExample(t *testing.T) {
	collection := []*domain.Report{
		report("RPT-0001", domain.CategoryLegal, domain.StatusResolved, "India", "Goa", "Panaji, Goa"),
		report("RPT-0002", domain.CategoryOversized, domain.StatusPending, "India", "Goa", "Margao, Goa"),
	}

	res := query.Run(collection, query.Filter{Country: "India"})
	assert.Equal(t, []string{"RPT-0001", "RPT-0002"}, ids(res.Reports))
	assert.Equal(t, query.Stats{Total: 2, Illegal: 1, Legal: 1, Resolved: 1, Pending: 1}, res.Stats)
	assert.False(t, res.Empty())

	res = query.Run(collection, query.Filter{Search: "RPT-0002"})
	assert.Equal(t, []string{"RPT-0002"}, ids(res.Reports))

	res = query.Run(collection, query.Filter{Country: "Japan"})
	assert.True(t, res.Empty())
	assert.Equal(t, query.Stats{}, res.Stats)
}

func TestSummarize(t *testing.T) {
	stats := query.Summarize(fixture())
	assert.Equal(t, query.Stats{
		Total:    6,
		Illegal:  3,
		Legal:    2,
		Resolved: 2,
		Pending:  3,
	}, stats)

	assert.Equal(t, query.Stats{}, query.Summarize(nil))
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, query.Filter{}.IsZero())
	assert.True(t, query.Filter{Country: "all", Search: "  "}.IsZero())
	assert.True(t, query.Filter{State: "Goa"}.IsZero())
	assert.False(t, query.Filter{Status: domain.StatusPending}.IsZero())
}

func TestFilterMatch(t *testing.T) {
	r := fixture()[1]
	assert.True(t, query.Filter{Search: "bangalore"}.Match(r))
	assert.False(t, query.Filter{Category: domain.CategoryDamaged}.Match(r))
}
