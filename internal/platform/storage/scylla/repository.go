package scylla

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/service"
)

//go:embed schema.cql
var schemaCQL string

const reportColumns = `id, category, location, country, state, latitude, longitude, created_at,
	confidence, violations, status, reporter_id, reporter_role, image_url, ocr_text, contacts, anomalies`

type scyllaRepository struct {
	session *gocql.Session
}

func NewScyllaRepository(session *gocql.Session) service.Repository {
	return &scyllaRepository{
		session: session,
	}
}

func newCluster(hosts ...string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(hosts...)
	cluster.Consistency = gocql.Quorum
	cluster.ProtoVersion = 4
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second
	return cluster
}

func Connect(keyspace string, hosts ...string) (*gocql.Session, error) {
	cluster := newCluster(hosts...)
	cluster.Keyspace = keyspace

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to scylla: %w", err)
	}

	log.Println("✅ Connected to ScyllaDB")
	return session, nil
}

// EnsureKeyspace creates the keyspace when missing. Single-replica, meant for dev clusters.
func EnsureKeyspace(keyspace string, hosts ...string) error {
	session, err := newCluster(hosts...).CreateSession()
	if err != nil {
		return fmt.Errorf("failed to connect to scylla: %w", err)
	}
	defer session.Close()

	stmt := fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, keyspace)
	if err := session.Query(stmt).Exec(); err != nil {
		return fmt.Errorf("scylla: failed to create keyspace %s: %w", keyspace, err)
	}
	return nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, session *gocql.Session) error {
	for _, stmt := range strings.Split(schemaCQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("scylla: failed to apply schema: %w", err)
		}
	}
	return nil
}

func (r *scyllaRepository) SaveReport(ctx context.Context, report *domain.Report) error {
	query := `INSERT INTO reports (` + reportColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`

	applied, err := r.session.Query(query,
		report.ID,
		string(report.Category),
		report.Location,
		report.Country,
		report.State,
		report.Coordinates.Lat,
		report.Coordinates.Lng,
		report.CreatedAt,
		report.Confidence,
		report.Violations,
		string(report.Status),
		report.ReporterID,
		string(report.ReporterRole),
		report.ImageURL,
		report.OCRText,
		report.Contacts,
		anomaliesToMap(report.Anomalies),
	).WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(map[string]interface{}{})

	if err != nil {
		return fmt.Errorf("scylla: failed to save report: %w", err)
	}
	if !applied {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReport, report.ID)
	}

	return nil
}

// row holds the scan targets of one reports row.
type row struct {
	id, category, location, country, state string
	lat, lng                                float64
	createdAt                               time.Time
	confidence                              int
	violations                              []string
	status, reporterID, reporterRole        string
	imageURL, ocrText                       string
	contacts                                []string
	anomalies                               map[string]string
}

func (w *row) dest() []interface{} {
	return []interface{}{
		&w.id, &w.category, &w.location, &w.country, &w.state, &w.lat, &w.lng, &w.createdAt,
		&w.confidence, &w.violations, &w.status, &w.reporterID, &w.reporterRole, &w.imageURL,
		&w.ocrText, &w.contacts, &w.anomalies,
	}
}

func (w *row) report() *domain.Report {
	violations := w.violations
	if violations == nil {
		violations = []string{}
	}
	return &domain.Report{
		ID:           w.id,
		Category:     domain.Category(w.category),
		Location:     w.location,
		Country:      w.country,
		State:        w.state,
		Coordinates:  domain.Coordinates{Lat: w.lat, Lng: w.lng},
		CreatedAt:    w.createdAt.UTC(),
		Confidence:   w.confidence,
		Violations:   violations,
		Status:       domain.Status(w.status),
		ReporterID:   w.reporterID,
		ReporterRole: domain.ReporterRole(w.reporterRole),
		ImageURL:     w.imageURL,
		OCRText:      w.ocrText,
		Contacts:     w.contacts,
		Anomalies:    anomaliesFromMap(w.anomalies),
	}
}

func (r *scyllaRepository) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	var w row
	err := r.session.Query(query, id).WithContext(ctx).Scan(w.dest()...)
	if err == gocql.ErrNotFound {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scylla: failed to get report: %w", err)
	}

	return w.report(), nil
}

func (r *scyllaRepository) ListReports(ctx context.Context) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`

	iter := r.session.Query(query).WithContext(ctx).Iter()

	var reports []*domain.Report
	var w row
	for iter.Scan(w.dest()...) {
		reports = append(reports, w.report())
		w = row{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scylla: failed to iterate reports: %w", err)
	}

	return reports, nil
}

// UpdateStatus uses a lightweight transaction so two authorities cannot race a transition.
func (r *scyllaRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	query := `UPDATE reports SET status = ? WHERE id = ? IF status = ?`

	previous := make(map[string]interface{})
	applied, err := r.session.Query(query, string(to), id, string(from)).
		WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(previous)
	if err != nil {
		return fmt.Errorf("scylla: failed to update status: %w", err)
	}

	if !applied {
		current, ok := previous["status"].(string)
		if !ok || current == "" {
			return domain.ErrReportNotFound
		}
		return fmt.Errorf("%w: status is now %s", domain.ErrInvalidTransition, current)
	}

	return nil
}

func (r *scyllaRepository) IncrementReporterCount(ctx context.Context, reporterID string) error {
	query := `UPDATE reporter_stats SET reports_count = reports_count + 1 WHERE reporter_id = ?`

	if err := r.session.Query(query, reporterID).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("scylla: failed to increment reporter count: %w", err)
	}
	return nil
}

func (r *scyllaRepository) GetReporterStats(ctx context.Context, reporterID string) (*domain.ReporterStats, error) {
	query := `SELECT reports_count FROM reporter_stats WHERE reporter_id = ?`

	stats := &domain.ReporterStats{ReporterID: reporterID}
	err := r.session.Query(query, reporterID).WithContext(ctx).Scan(&stats.ReportsCount)

	if err == gocql.ErrNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scylla: failed to get reporter stats: %w", err)
	}

	return stats, nil
}

func anomaliesToMap(a *domain.Anomalies) map[string]string {
	if a == nil {
		return nil
	}
	return map[string]string{
		"oversized": string(a.Oversized),
		"damaged":   string(a.Damaged),
		"obscene":   string(a.Obscene),
		"sensitive": string(a.Sensitive),
	}
}

func anomaliesFromMap(m map[string]string) *domain.Anomalies {
	if len(m) == 0 {
		return nil
	}
	return &domain.Anomalies{
		Oversized: domain.AnomalyState(m["oversized"]),
		Damaged:   domain.AnomalyState(m["damaged"]),
		Obscene:   domain.AnomalyState(m["obscene"]),
		Sensitive: domain.AnomalyState(m["sensitive"]),
	}
}
