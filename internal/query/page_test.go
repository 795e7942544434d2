package query_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	var reports []*domain.Report
	for i := 1; i <= 120; i++ {
		reports = append(reports, &domain.Report{ID: fmt.Sprintf("RPT-%04d", i)})
	}

	first := query.Page(reports, 1, 0)
	assert.Len(t, first, query.DefaultPageSize)
	assert.Equal(t, "RPT-0001", first[0].ID)

	last := query.Page(reports, 3, 50)
	assert.Len(t, last, 20)
	assert.Equal(t, "RPT-0101", last[0].ID)

	assert.Empty(t, query.Page(reports, 4, 50))
	assert.NotNil(t, query.Page(reports, 4, 50))
	assert.Equal(t, first, query.Page(reports, -2, 50), "pages start at 1")
	assert.Len(t, query.Page(reports, 1, 10_000), 120)
	assert.Empty(t, query.Page(reports, math.MaxInt, 50))
	assert.Empty(t, query.Page(reports, math.MaxInt/50+2, 50))
	assert.Empty(t, query.Page(nil, 1, 50))

	sliced := query.Page(reports, 1, 10)
	sliced = append(sliced, &domain.Report{ID: "X"})
	assert.Equal(t, "RPT-0011", reports[10].ID, "appending to a page must not clobber the source")
}
