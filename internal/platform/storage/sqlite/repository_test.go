package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/storage/sqlite"
	"github.com/rgdevment/billboard-registry/internal/service"
)

var _ service.Repository = (*sqlite.Store)(nil)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(id string, created time.Time) *domain.Report {
	anomalies := domain.AnomaliesFor(domain.CategoryOversized)
	return &domain.Report{
		ID:           id,
		Category:     domain.CategoryOversized,
		Location:     "MG Road, Bengaluru",
		Country:      "India",
		State:        "Karnataka",
		Coordinates:  domain.Coordinates{Lat: 12.9716, Lng: 77.5946},
		CreatedAt:    created,
		Confidence:   95,
		Violations:   []string{"Exceeds size limit", "No permit"},
		Status:       domain.StatusPending,
		ReporterID:   "user-1",
		ReporterRole: domain.RoleCitizen,
		ImageURL:     "http://localhost:9000/billboard-images/reports/x.jpg",
		OCRText:      "Call 9823015375",
		Contacts:     []string{"+919823015375"},
		Anomalies:    &anomalies,
	}
}

func TestSaveAndGetReport(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 4, 9, 30, 0, 123, time.UTC)

	want := sampleReport("RPT-0001", created)
	require.NoError(t, store.SaveReport(ctx, want))

	got, err := store.GetReport(ctx, "RPT-0001")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetReportNotFound(t *testing.T) {
	store := openStore(t)

	_, err := store.GetReport(context.Background(), "RPT-MISSING")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestSaveReportLegalWithoutExtras(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	r := sampleReport("RPT-0002", time.Now().UTC())
	r.Category = domain.CategoryLegal
	r.Violations = []string{}
	r.Contacts = nil
	r.Anomalies = nil
	require.NoError(t, store.SaveReport(ctx, r))

	got, err := store.GetReport(ctx, "RPT-0002")
	require.NoError(t, err)
	assert.NotNil(t, got.Violations)
	assert.Empty(t, got.Violations)
	assert.Nil(t, got.Contacts)
	assert.Nil(t, got.Anomalies)
}

func TestListReports(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	empty, err := store.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"RPT-0001", "RPT-0002", "RPT-0003"} {
		require.NoError(t, store.SaveReport(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))))
	}

	reports, err := store.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestSaveReportNeverOverwrites(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	original := sampleReport("RPT-0001", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveReport(ctx, original))
	require.NoError(t, store.UpdateStatus(ctx, "RPT-0001", domain.StatusPending, domain.StatusResolved))

	again := sampleReport("RPT-0001", time.Now().UTC())
	again.Location = "Somewhere else"
	err := store.SaveReport(ctx, again)
	assert.ErrorIs(t, err, domain.ErrDuplicateReport)

	got, err := store.GetReport(ctx, "RPT-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
	assert.Equal(t, original.Location, got.Location)
	assert.Equal(t, original.CreatedAt, got.CreatedAt)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    domain.Status
		to      domain.Status
		id      string
		wantErr error
	}{
		{name: "applies when status matches", id: "RPT-0001", from: domain.StatusPending, to: domain.StatusInvestigating},
		{name: "stale from status", id: "RPT-0001", from: domain.StatusInvestigating, to: domain.StatusResolved, wantErr: domain.ErrInvalidTransition},
		{name: "unknown report", id: "RPT-9999", from: domain.StatusPending, to: domain.StatusResolved, wantErr: domain.ErrReportNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			require.NoError(t, store.SaveReport(ctx, sampleReport("RPT-0001", time.Now().UTC())))

			err := store.UpdateStatus(ctx, tt.id, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := store.GetReport(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestReporterStats(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	stats, err := store.GetReporterStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ReportsCount)

	for range 3 {
		require.NoError(t, store.IncrementReporterCount(ctx, "user-1"))
	}
	require.NoError(t, store.IncrementReporterCount(ctx, "user-2"))

	stats, err = store.GetReporterStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, &domain.ReporterStats{ReporterID: "user-1", ReportsCount: 3}, stats)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveReport(context.Background(), sampleReport("RPT-0001", time.Now().UTC())))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(path)
	require.NoError(t, err)
	defer second.Close()

	_, err = second.GetReport(context.Background(), "RPT-0001")
	assert.NoError(t, err)
}
