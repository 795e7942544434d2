package service

import (
	"context"
	"io"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
)

// SubmitInput is a citizen or inspector capture: the photo plus where it was taken.
type SubmitInput struct {
	Image        classify.Image
	Coordinates  domain.Coordinates
	Address      string
	Country      string
	State        string
	ReporterID   string
	ReporterRole domain.ReporterRole
}

type Service interface {
	SubmitReport(ctx context.Context, in SubmitInput) (*domain.Report, error)

	Analyze(ctx context.Context, img classify.Image) (domain.DetectionResult, error)

	QueryReports(ctx context.Context, f query.Filter) (query.Result, error)

	GetReport(ctx context.Context, id string) (*domain.Report, error)

	UpdateStatus(ctx context.Context, id string, to domain.Status) (*domain.Report, error)

	ExportCSV(ctx context.Context, f query.Filter, w io.Writer) (int, error)

	ReporterStats(ctx context.Context, reporterID string) (*domain.ReporterStats, error)

	ImportReports(ctx context.Context, reports []*domain.Report) (int, error)
}
