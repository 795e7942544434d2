package query_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
)

func exportFixture() []*domain.Report {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 14, 30, 0, 0, time.UTC) }
	return []*domain.Report{
		{
			ID: "RPT-0001", Category: domain.CategoryLegal, Status: domain.StatusResolved,
			Location: "Mumbai, Maharashtra", Country: "India", State: "Maharashtra",
			Confidence: 95, CreatedAt: day(1), Violations: []string{},
		},
		{
			ID: "RPT-0002", Category: domain.CategoryOversized, Status: domain.StatusPending,
			Location: `Shop "Kiran", Pune`, Country: "India", State: "Maharashtra",
			Confidence: 87, CreatedAt: day(2),
			Violations: []string{"Exceeds limit, strictly", "No proper permits"},
		},
		{
			ID: "RPT-0003", Category: domain.CategoryDamaged, Status: domain.StatusInvestigating,
			Location: "Nice, Provence-Alpes-Côte d'Azur", Country: "France", State: "Provence-Alpes-Côte d'Azur",
			Confidence: 92, CreatedAt: day(3), Violations: []string{"Unsafe structural condition"},
		},
	}
}

func TestWriteCSVGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, exportFixture()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export", buf.Bytes())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, exportFixture()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, query.Header, rows[0])
	for _, row := range rows {
		assert.Len(t, row, len(query.Header))
	}

	assert.Equal(t, `Shop "Kiran", Pune`, rows[2][1])
	assert.Equal(t, "Exceeds limit, strictly; No proper permits", rows[2][8])
	assert.Equal(t, "87", rows[2][6])
	assert.Equal(t, "2026-10-02", rows[2][7])
	assert.Equal(t, "", rows[1][8], "legal reports export an empty violation list")
}

func TestWriteCSVSingleViolationWithComma(t *testing.T) {
	r := exportFixture()[1]
	r.Violations = []string{"Exceeds limit, strictly"}

	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, []*domain.Report{r}))
	assert.Contains(t, buf.String(), `,"Exceeds limit, strictly"`+"\n")

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Exceeds limit, strictly", rows[1][8])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, nil))
	assert.Equal(t, "Report ID,Location,Country,State,Type,Status,Confidence,Date,Violations\n", buf.String())
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "billboard-reports-2026-10-18.csv", query.ExportFilename(day))
}
