package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the classification outcome attached to a report.
// Using a custom type prevents string typos in the business logic.
type Category string

// Status is the workflow state of a report's resolution.
type Status string

// ReporterRole tells apart citizen submissions from field inspections.
type ReporterRole string

const (
	CategoryOversized Category = "oversized"
	CategoryDamaged   Category = "damaged"
	CategoryObscene   Category = "obscene"
	CategoryLegal     Category = "legal"
	CategoryResolved  Category = "resolved"

	// CategoryNoBillboard is only ever produced by a classifier.
	// A report is never stored with it.
	CategoryNoBillboard Category = "no-billboard"
)

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

const (
	RoleCitizen   ReporterRole = "citizen"
	RoleInspector ReporterRole = "inspector"
)

var (
	ErrInvalidReport     = errors.New("invalid report")
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoBillboard       = errors.New("no billboard detected in image")
	ErrDuplicateReport   = errors.New("report already exists")
)

// Categories lists the categories a stored report may carry, in display order.
var Categories = []Category{CategoryOversized, CategoryDamaged, CategoryObscene, CategoryLegal, CategoryResolved}

// Statuses lists the workflow states in display order.
var Statuses = []Status{StatusPending, StatusInvestigating, StatusResolved}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Illegal reports whether the category is one of the three violation outcomes.
func (c Category) Illegal() bool {
	return c == CategoryOversized || c == CategoryDamaged || c == CategoryObscene
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInvestigating || s == StatusResolved
}

func (r ReporterRole) Valid() bool {
	return r == RoleCitizen || r == RoleInspector
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" db:"latitude"`
	Lng float64 `json:"lng" db:"longitude"`
}

func (c Coordinates) Valid() bool {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return false
	}
	return c.Lat != 0 || c.Lng != 0
}

// Label renders the coordinates the way the capture screen shows them.
func (c Coordinates) Label() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng)
}

// Report is a single billboard-violation observation.
// This struct maps to the 'reports' table.
type Report struct {
	ID          string      `json:"id" db:"id"`
	Category    Category    `json:"type" db:"category"`
	Location    string      `json:"location" db:"location"`
	Country     string      `json:"country" db:"country"`
	State       string      `json:"state" db:"state"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   time.Time   `json:"timestamp" db:"created_at"`

	// Confidence is the classifier's certainty, 0 to 100.
	Confidence int      `json:"confidence" db:"confidence"`
	Violations []string `json:"violations" db:"violations"`
	Status     Status   `json:"status" db:"status"`

	ReporterID   string       `json:"reporter_id,omitempty" db:"reporter_id"`
	ReporterRole ReporterRole `json:"reporter_type" db:"reporter_role"`

	ImageURL string `json:"image_url,omitempty" db:"image_url"`
	OCRText  string `json:"ocr_text,omitempty" db:"ocr_text"`

	// Contacts holds E.164 numbers found in the billboard text.
	// Inspectors use them to reach the advertiser.
	Contacts []string `json:"contacts,omitempty" db:"contacts"`

	Anomalies *Anomalies `json:"anomaly_details,omitempty" db:"anomalies"`
}

// Illegal reports whether the report records a violation.
func (r *Report) Illegal() bool {
	return r.Category.Illegal()
}

// Validate checks the invariants every stored report must hold.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidReport)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidReport, r.Category)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidReport, r.Status)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidReport, r.Confidence)
	}
	if r.Category == CategoryResolved && r.Status != StatusResolved {
		return fmt.Errorf("%w: resolved category requires resolved status", ErrInvalidReport)
	}
	if r.Category == CategoryLegal && len(r.Violations) > 0 {
		return fmt.Errorf("%w: legal billboard cannot carry violations", ErrInvalidReport)
	}
	if r.ReporterRole != "" && !r.ReporterRole.Valid() {
		return fmt.Errorf("%w: unknown reporter role %q", ErrInvalidReport, r.ReporterRole)
	}
	return nil
}

// CanTransition reports whether an authority may move a report from one status to another.
// Resolved is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusInvestigating || to == StatusResolved
	case StatusInvestigating:
		return to == StatusResolved
	default:
		return false
	}
}

// Transition moves the report to the given status, enforcing the workflow.
func (r *Report) Transition(to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	r.Status = to
	return nil
}

// NewReportID returns a short, unique report token like RPT-1F3A9C0B.
func NewReportID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RPT-" + strings.ToUpper(raw[:8])
}

// NewReport is a factory to create a pending report from a detection.
// Note: It expects the detection to be a billboard (caller rejects CategoryNoBillboard).
func NewReport(d DetectionResult, place Place, reporterID string, role ReporterRole) *Report {
	violations := append([]string{}, d.Violations...)
	if d.Category == CategoryLegal {
		violations = []string{}
	}

	anomalies := d.Anomalies

	return &Report{
		ID:           NewReportID(),
		Category:     d.Category,
		Location:     place.Label(),
		Country:      place.Country,
		State:        place.State,
		Coordinates:  place.Coordinates,
		CreatedAt:    time.Now().UTC(),
		Confidence:   d.Confidence,
		Violations:   violations,
		Status:       StatusPending,
		ReporterID:   reporterID,
		ReporterRole: role,
		OCRText:      d.OCRText,
		Anomalies:    &anomalies,
	}
}

// Place is where a billboard was captured.
type Place struct {
	Address     string
	Country     string
	State       string
	Coordinates Coordinates
}

// Label falls back to the coordinate pair when no address was resolved.
func (p Place) Label() string {
	if strings.TrimSpace(p.Address) != "" {
		return strings.TrimSpace(p.Address)
	}
	return p.Coordinates.Label()
}

// ReporterStats is the per-reporter activity summary.
type ReporterStats struct {
	ReporterID   string `json:"reporter_id" db:"reporter_id"`
	ReportsCount int64  `json:"reports_count" db:"reports_count"`
}
