// Package sqlite is the single-node report store, used for local runs and
// small deployments that do not need a Scylla cluster.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const reportColumns = `id, category, location, country, state, latitude, longitude, created_at,
	confidence, violations, status, reporter_id, reporter_role, image_url, ocr_text, contacts, anomalies`

// Store implements service.Repository on top of SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Safe to call on an existing file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport inserts a new report. Existing rows are never overwritten.
func (s *Store) SaveReport(ctx context.Context, r *domain.Report) error {
	violations, err := json.Marshal(r.Violations)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode violations: %w", err)
	}
	contacts, err := json.Marshal(r.Contacts)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode contacts: %w", err)
	}
	var anomalies sql.NullString
	if r.Anomalies != nil {
		b, err := json.Marshal(r.Anomalies)
		if err != nil {
			return fmt.Errorf("sqlite: failed to encode anomalies: %w", err)
		}
		anomalies = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		string(r.Category),
		r.Location,
		r.Country,
		r.State,
		r.Coordinates.Lat,
		r.Coordinates.Lng,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Confidence,
		string(violations),
		string(r.Status),
		r.ReporterID,
		string(r.ReporterRole),
		r.ImageURL,
		r.OCRText,
		string(contacts),
		anomalies,
	)
	if isPrimaryKeyConflict(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReport, r.ID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: failed to save report: %w", err)
	}
	return nil
}

func isPrimaryKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*domain.Report, error) {
	var (
		r                               domain.Report
		category, status, role          string
		createdAt, violations, contacts string
		anomalies                       sql.NullString
	)
	err := sc.Scan(
		&r.ID, &category, &r.Location, &r.Country, &r.State,
		&r.Coordinates.Lat, &r.Coordinates.Lng, &createdAt, &r.Confidence,
		&violations, &status, &r.ReporterID, &role, &r.ImageURL, &r.OCRText,
		&contacts, &anomalies,
	)
	if err != nil {
		return nil, err
	}

	r.Category = domain.Category(category)
	r.Status = domain.Status(status)
	r.ReporterRole = domain.ReporterRole(role)

	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("sqlite: bad created_at for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(violations), &r.Violations); err != nil {
		return nil, fmt.Errorf("sqlite: bad violations for %s: %w", r.ID, err)
	}
	if r.Violations == nil {
		r.Violations = []string{}
	}
	if err := json.Unmarshal([]byte(contacts), &r.Contacts); err != nil {
		return nil, fmt.Errorf("sqlite: bad contacts for %s: %w", r.ID, err)
	}
	if anomalies.Valid {
		r.Anomalies = &domain.Anomalies{}
		if err := json.Unmarshal([]byte(anomalies.String), r.Anomalies); err != nil {
			return nil, fmt.Errorf("sqlite: bad anomalies for %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get report: %w", err)
	}
	return r, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate reports: %w", err)
	}
	return reports, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("sqlite: failed to update status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to update status: %w", err)
	}
	if n == 1 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: failed to read status: %w", err)
	}
	return fmt.Errorf("%w: status is now %s", domain.ErrInvalidTransition, current)
}

func (s *Store) IncrementReporterCount(ctx context.Context, reporterID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reporter_stats (reporter_id, reports_count) VALUES (?, 1)
		ON CONFLICT (reporter_id) DO UPDATE SET reports_count = reports_count + 1`,
		reporterID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to increment reporter count: %w", err)
	}
	return nil
}

func (s *Store) GetReporterStats(ctx context.Context, reporterID string) (*domain.ReporterStats, error) {
	stats := &domain.ReporterStats{ReporterID: reporterID}
	err := s.db.QueryRowContext(ctx,
		`SELECT reports_count FROM reporter_stats WHERE reporter_id = ?`, reporterID).
		Scan(&stats.ReportsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get reporter stats: %w", err)
	}
	return stats, nil
}
