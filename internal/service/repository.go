package service

import (
	"context"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
)

type Repository interface {
	// SaveReport creates a report. An id already in the store returns domain.ErrDuplicateReport
	// and leaves the stored row as it was.
	SaveReport(ctx context.Context, r *domain.Report) error

	// GetReport returns domain.ErrReportNotFound for unknown ids.
	GetReport(ctx context.Context, id string) (*domain.Report, error)

	ListReports(ctx context.Context) ([]*domain.Report, error)

	// UpdateStatus is a compare-and-set: it only applies when the stored status is still from.
	// A lost race returns domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) error

	IncrementReporterCount(ctx context.Context, reporterID string) error

	GetReporterStats(ctx context.Context, reporterID string) (*domain.ReporterStats, error)
}

// ImageStore keeps the uploaded evidence photos and returns a URL for them.
type ImageStore interface {
	PutImage(ctx context.Context, key string, img classify.Image) (string, error)
}
