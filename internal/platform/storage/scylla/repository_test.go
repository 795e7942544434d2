package scylla

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

func TestAnomaliesMapping(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, anomaliesToMap(nil))
		assert.Nil(t, anomaliesFromMap(nil))
		assert.Nil(t, anomaliesFromMap(map[string]string{}))
	})

	t.Run("obscene keeps sensitive flag", func(t *testing.T) {
		in := domain.AnomaliesFor(domain.CategoryObscene)
		out := anomaliesFromMap(anomaliesToMap(&in))
		assert.Equal(t, &in, out)
	})
}

func TestRowReport(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	w := row{
		id:           "RPT-0001",
		category:     "legal",
		location:     "Mumbai, Maharashtra",
		country:      "India",
		state:        "Maharashtra",
		lat:          19.076,
		lng:          72.8777,
		createdAt:    created,
		confidence:   95,
		status:       "pending",
		reporterID:   "anonymous",
		reporterRole: "citizen",
	}

	r := w.report()

	assert.Equal(t, domain.CategoryLegal, r.Category)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, domain.Coordinates{Lat: 19.076, Lng: 72.8777}, r.Coordinates)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.True(t, r.CreatedAt.Equal(created))
	assert.NotNil(t, r.Violations, "violations must never be null in JSON")
	assert.Empty(t, r.Violations)
	assert.Nil(t, r.Anomalies)
	assert.Len(t, w.dest(), strings.Count(reportColumns, ",")+1)
}

func TestSchemaStatements(t *testing.T) {
	assert.Contains(t, schemaCQL, "CREATE TABLE IF NOT EXISTS reports")
	assert.Contains(t, schemaCQL, "reports_count counter")
}
