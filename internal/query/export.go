package query

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

// Header is the fixed column order of the CSV export.
var Header = []string{"Report ID", "Location", "Country", "State", "Type", "Status", "Confidence", "Date", "Violations"}

const (
	ViolationSeparator = "; "
	DateLayout         = "2006-01-02"
	ContentTypeCSV     = "text/csv"
)

// ExportFilename names the download for the given day, e.g. billboard-reports-2026-10-18.csv.
func ExportFilename(day time.Time) string {
	return fmt.Sprintf("billboard-reports-%s.csv", day.UTC().Format(DateLayout))
}

// WriteCSV renders reports as comma-separated text, one row per report after the header.
// Location and violations are always quoted; other fields only when they hold a
// comma, quote or line break. Embedded quotes are doubled.
func WriteCSV(w io.Writer, reports []*domain.Report) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("export: failed to write header: %w", err)
	}

	for _, r := range reports {
		row := []string{
			field(r.ID),
			quote(r.Location),
			field(r.Country),
			field(r.State),
			field(string(r.Category)),
			field(string(r.Status)),
			strconv.Itoa(r.Confidence),
			field(r.CreatedAt.UTC().Format(DateLayout)),
			quote(strings.Join(r.Violations, ViolationSeparator)),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return fmt.Errorf("export: failed to write %s: %w", r.ID, err)
		}
	}

	return bw.Flush()
}

func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
