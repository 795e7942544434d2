package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/metrics"
	"github.com/rgdevment/billboard-registry/internal/query"
)

const (
	anonymousReporter = "anonymous"
	importWorkers     = 16
	saveAttempts      = 3
)

// reportService is the concrete implementation of the Service interface.
// It is unexported (starts with lowercase) to force usage of the Interface.
type reportService struct {
	repo       Repository
	images     ImageStore
	classifier classify.Classifier
	catalog    *domain.Catalog
}

// NewReportService is the constructor.
// images may be nil, in which case photos are classified but not kept.
func NewReportService(repo Repository, images ImageStore, classifier classify.Classifier, catalog *domain.Catalog) Service {
	return &reportService{
		repo:       repo,
		images:     images,
		classifier: classifier,
		catalog:    catalog,
	}
}

// SubmitReport classifies the photo, stores it and records a pending report.
func (s *reportService) SubmitReport(ctx context.Context, in SubmitInput) (*domain.Report, error) {
	if !in.Coordinates.Valid() {
		return nil, fmt.Errorf("%w: invalid coordinates", domain.ErrInvalidReport)
	}

	role := in.ReporterRole
	if role == "" {
		role = domain.RoleCitizen
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown reporter role %q", domain.ErrInvalidReport, role)
	}

	reporter := strings.TrimSpace(in.ReporterID)
	if reporter == "" {
		reporter = anonymousReporter
	}

	if err := s.checkPlace(in.Country, in.State); err != nil {
		return nil, err
	}

	img := in.Image
	if err := img.Validate(); err != nil {
		return nil, err
	}

	detection, err := s.classify(ctx, img)
	if err != nil {
		return nil, err
	}
	if detection.Category == domain.CategoryNoBillboard {
		return nil, domain.ErrNoBillboard
	}

	report := domain.NewReport(detection, domain.Place{
		Address:     in.Address,
		Country:     strings.TrimSpace(in.Country),
		State:       strings.TrimSpace(in.State),
		Coordinates: in.Coordinates,
	}, reporter, role)
	report.Contacts = domain.ExtractContacts(report.OCRText, s.catalog.ISO(report.Country))

	if s.images != nil {
		url, err := s.images.PutImage(ctx, imageKey(report.ID, img.ContentType), img)
		if err != nil {
			return nil, fmt.Errorf("submit: failed to store image: %w", err)
		}
		report.ImageURL = url
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}

	if err := s.saveNew(ctx, report); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	metrics.ReportsSubmitted.WithLabelValues(string(report.Category), string(report.ReporterRole)).Inc()

	if err := s.repo.IncrementReporterCount(ctx, reporter); err != nil {
		log.Printf("⚠️  Failed to update report count for %s: %v", reporter, err)
	}

	return report, nil
}

// saveNew stores a freshly built report, drawing a new id when the current one is taken.
func (s *reportService) saveNew(ctx context.Context, report *domain.Report) error {
	var err error
	for range saveAttempts {
		if err = s.repo.SaveReport(ctx, report); !errors.Is(err, domain.ErrDuplicateReport) {
			return err
		}
		log.Printf("⚠️  Report id %s already taken, retrying", report.ID)
		report.ID = domain.NewReportID()
	}
	return err
}

// Analyze classifies a photo without recording anything.
func (s *reportService) Analyze(ctx context.Context, img classify.Image) (domain.DetectionResult, error) {
	return s.classify(ctx, img)
}

func (s *reportService) classify(ctx context.Context, img classify.Image) (domain.DetectionResult, error) {
	detection, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("classify: %w", err)
	}
	metrics.Classifications.WithLabelValues(string(detection.Category)).Inc()
	return detection, nil
}

// checkPlace rejects states that do not belong to a known country.
// Countries outside the catalog are accepted as free text.
func (s *reportService) checkPlace(country, state string) error {
	country, state = strings.TrimSpace(country), strings.TrimSpace(state)
	if country == "" || state == "" || s.catalog.ISO(country) == "" {
		return nil
	}
	if _, ok := s.catalog.Lookup(country, state); !ok {
		return fmt.Errorf("%w: %q is not a state of %q", domain.ErrInvalidReport, state, country)
	}
	return nil
}

// QueryReports loads the collection newest first and runs the filter over it.
func (s *reportService) QueryReports(ctx context.Context, f query.Filter) (query.Result, error) {
	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("query: %w", err)
	}
	sortNewestFirst(reports)
	return query.Run(reports, f), nil
}

func (s *reportService) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrReportNotFound
	}
	return s.repo.GetReport(ctx, id)
}

// UpdateStatus applies an authority status change.
func (s *reportService) UpdateStatus(ctx context.Context, id string, to domain.Status) (*domain.Report, error) {
	current, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := updated.Transition(to); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, updated.ID, current.Status, to); err != nil {
		return nil, err
	}
	metrics.StatusTransitions.WithLabelValues(string(to)).Inc()

	return &updated, nil
}

// ExportCSV writes every report matching f and returns how many rows were written.
func (s *reportService) ExportCSV(ctx context.Context, f query.Filter, w io.Writer) (int, error) {
	res, err := s.QueryReports(ctx, f)
	if err != nil {
		return 0, err
	}
	if err := query.WriteCSV(w, res.Reports); err != nil {
		return 0, err
	}
	metrics.ExportedRows.Add(float64(len(res.Reports)))
	return len(res.Reports), nil
}

func (s *reportService) ReporterStats(ctx context.Context, reporterID string) (*domain.ReporterStats, error) {
	reporterID = strings.TrimSpace(reporterID)
	if reporterID == "" {
		reporterID = anonymousReporter
	}
	return s.repo.GetReporterStats(ctx, reporterID)
}

// ImportReports saves already-built reports (demo data, migrations) concurrently.
// Reports whose id is already stored are left untouched and skipped. Invalid
// reports are skipped too; every failure is reported in the joined error.
func (s *reportService) ImportReports(ctx context.Context, reports []*domain.Report) (int, error) {
	pool, err := ants.NewPool(importWorkers)
	if err != nil {
		return 0, fmt.Errorf("import: failed to start worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		saved int
		errs  []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, r := range reports {
		if err := r.Validate(); err != nil {
			fail(fmt.Errorf("%s: %w", r.ID, err))
			continue
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			err := s.repo.SaveReport(ctx, r)
			if errors.Is(err, domain.ErrDuplicateReport) {
				return
			}
			if err != nil {
				fail(fmt.Errorf("%s: %w", r.ID, err))
				return
			}
			mu.Lock()
			saved++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("%s: %w", r.ID, err))
		}
	}

	wg.Wait()
	return saved, errors.Join(errs...)
}

func sortNewestFirst(reports []*domain.Report) {
	slices.SortStableFunc(reports, func(a, b *domain.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

func imageKey(reportID, contentType string) string {
	return fmt.Sprintf("reports/%s/%s%s", reportID, uuid.New().String(), imageExtensions[contentType])
}
