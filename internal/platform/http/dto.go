package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
)

const maxUploadBytes = 10 << 20

var errImageRequired = errors.New("image file is required")

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	if !domain.Status(strings.ToLower(strings.TrimSpace(r.Status))).Valid() {
		return fmt.Errorf("status must be one of %v", domain.Statuses)
	}
	return nil
}

func (r *UpdateStatusRequest) Target() domain.Status {
	return domain.Status(strings.ToLower(strings.TrimSpace(r.Status)))
}

type ListReportsResponse struct {
	Items    []*domain.Report `json:"items"`
	Stats    query.Stats      `json:"stats"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Message  string           `json:"message,omitempty"`
}

type LocationsResponse struct {
	Countries []domain.CountryData `json:"countries"`
}

type StatesResponse struct {
	Country string   `json:"country"`
	States  []string `json:"states"`
}

// SubmissionForm is the multipart capture sent by the reporting app.
type SubmissionForm struct {
	Image       classify.Image
	Coordinates domain.Coordinates
	Address     string
	Country     string
	State       string
}

// parseFilter reads the dashboard filter from the query string. Unknown
// category or status values are rejected rather than silently matching nothing.
func parseFilter(r *http.Request) (query.Filter, error) {
	q := r.URL.Query()
	f := query.Filter{
		Search:   q.Get("search"),
		Country:  q.Get("country"),
		State:    q.Get("state"),
		Category: domain.Category(strings.ToLower(strings.TrimSpace(q.Get("type")))),
		Status:   domain.Status(strings.ToLower(strings.TrimSpace(q.Get("status")))),
	}

	if c := string(f.Category); c != "" && c != query.All && !f.Category.Valid() {
		return query.Filter{}, fmt.Errorf("unknown type %q", c)
	}
	if s := string(f.Status); s != "" && s != query.All && !f.Status.Valid() {
		return query.Filter{}, fmt.Errorf("unknown status %q", s)
	}
	return f, nil
}

func parsePaging(r *http.Request) (page, size int, err error) {
	q := r.URL.Query()
	page, size = 1, query.DefaultPageSize

	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if v := q.Get("page_size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 1 {
			return 0, 0, errors.New("page_size must be a positive integer")
		}
		if size > query.MaxPageSize {
			size = query.MaxPageSize
		}
	}
	return page, size, nil
}

// readImage pulls the "image" part out of a parsed multipart form.
func readImage(r *http.Request) (classify.Image, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return classify.Image{}, errImageRequired
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return classify.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxUploadBytes {
		return classify.Image{}, fmt.Errorf("image exceeds %d bytes", maxUploadBytes)
	}

	return classify.Image{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}

func parseSubmission(r *http.Request) (SubmissionForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return SubmissionForm{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	img, err := readImage(r)
	if err != nil {
		return SubmissionForm{}, err
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("lat")), 64)
	if err != nil {
		return SubmissionForm{}, errors.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("lng")), 64)
	if err != nil {
		return SubmissionForm{}, errors.New("lng must be a number")
	}

	return SubmissionForm{
		Image:       img,
		Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
		Address:     r.FormValue("address"),
		Country:     r.FormValue("country"),
		State:       r.FormValue("state"),
	}, nil
}
