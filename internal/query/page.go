package query

import "github.com/rgdevment/billboard-registry/internal/domain"

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Page slices a filtered set for presentation. Pages start at 1; out of range
// pages are empty. size is clamped to [1, MaxPageSize], DefaultPageSize when <= 0.
func Page(reports []*domain.Report, page, size int) []*domain.Report {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	if page-1 >= (len(reports)+size-1)/size {
		return []*domain.Report{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(reports) {
		end = len(reports)
	}
	return reports[start:end:end]
}
