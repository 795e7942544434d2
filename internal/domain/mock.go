package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// MaxMockReports caps the demo data set.
const MaxMockReports = 500

var mockViolations = []string{
	"Exceeds municipal size limit",
	"Unsafe structural condition",
	"Inappropriate content",
	"No proper permits",
}

// OCR text the demo data attaches to each category.
var mockOCR = map[Category]string{
	CategoryOversized: "CONTACT\n9823015375\nPRE-LAUNCHING\nCODENAME\nMADE FOR ME\nSHANGR",
	CategoryLegal:     "AUTHORIZED BILLBOARD\nPERMIT: #ABC123\nCOMPLIANT WITH RULES",
	CategoryDamaged:   "WARNING: DAMAGED\nSTRUCTURAL ISSUES\nCONTACT MUNICIPAL",
}

const mockOCRDefault = "INAPPROPRIATE CONTENT\nVIOLATES GUIDELINES"

// GenerateMockReports builds the demo collection: three to eight reports per
// state of every catalog country, identified RPT-0001 onwards, created within
// the 30 days before now. At most limit reports are returned (MaxMockReports when limit <= 0).
func GenerateMockReports(c *Catalog, rng *rand.Rand, now time.Time, limit int) []*Report {
	if limit <= 0 || limit > MaxMockReports {
		limit = MaxMockReports
	}

	reports := make([]*Report, 0, limit)
	id := 1

	for _, country := range c.All() {
		for _, state := range country.States {
			count := rng.IntN(6) + 3
			for i := 0; i < count; i++ {
				if len(reports) == limit {
					return reports
				}
				reports = append(reports, mockReport(id, country, state, rng, now))
				id++
			}
		}
	}
	return reports
}

func mockReport(id int, country CountryData, state StateData, rng *rand.Rand, now time.Time) *Report {
	category := Categories[rng.IntN(len(Categories))]

	status := StatusResolved
	if category != CategoryResolved {
		// Demo data only ever draws pending or resolved.
		status = []Status{StatusPending, StatusResolved}[rng.IntN(2)]
	}

	violations := []string{}
	if category != CategoryLegal {
		violations = append(violations, mockViolations[:rng.IntN(3)+1]...)
	}

	role := RoleInspector
	if rng.Float64() > 0.3 {
		role = RoleCitizen
	}

	city := "Unknown"
	if len(state.Cities) > 0 {
		city = state.Cities[rng.IntN(len(state.Cities))]
	}

	imageURL := state.ImageURL
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://images.unsplash.com/photo-%d?w=400&h=300&fit=crop", 1541919329513+id)
	}

	ocr, ok := mockOCR[category]
	if !ok {
		ocr = mockOCRDefault
	}

	age := time.Duration(rng.Float64() * float64(30*24*time.Hour))
	anomalies := AnomaliesFor(category)

	return &Report{
		ID:       fmt.Sprintf("RPT-%04d", id),
		Category: category,
		Location: fmt.Sprintf("%s, %s", city, state.Name),
		Country:  country.Name,
		State:    state.Name,
		Coordinates: Coordinates{
			Lat: state.Coordinates[0] + (rng.Float64()-0.5)*2,
			Lng: state.Coordinates[1] + (rng.Float64()-0.5)*2,
		},
		CreatedAt:    now.Add(-age).UTC(),
		Confidence:   rng.IntN(20) + 80,
		Violations:   violations,
		Status:       status,
		ReporterRole: role,
		ImageURL:     imageURL,
		OCRText:      ocr,
		Contacts:     ExtractContacts(ocr, country.ISO),
		Anomalies:    &anomalies,
	}
}
