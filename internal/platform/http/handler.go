package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/authz"
	"github.com/rgdevment/billboard-registry/internal/platform/http/middleware"
	"github.com/rgdevment/billboard-registry/internal/query"
	"github.com/rgdevment/billboard-registry/internal/service"
)

type Handler struct {
	service  service.Service
	catalog  *domain.Catalog
	enforcer *authz.Enforcer
	limiter  *middleware.RateLimiter
	now      func() time.Time
}

func NewHandler(s service.Service, catalog *domain.Catalog, enforcer *authz.Enforcer, limiter *middleware.RateLimiter) *Handler {
	return &Handler{
		service:  s,
		catalog:  catalog,
		enforcer: enforcer,
		limiter:  limiter,
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	allow := func(a authz.Action) func(http.Handler) http.Handler {
		return middleware.Require(h.enforcer, a)
	}

	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/locations", h.ListLocations)
		r.Get("/locations/{country}/states", h.ListStates)

		r.With(h.limiter.Handler, allow(authz.ActionSubmit)).Post("/reports", h.CreateReport)
		r.With(h.limiter.Handler, allow(authz.ActionAnalyze)).Post("/analyze", h.Analyze)

		r.With(allow(authz.ActionRead)).Get("/reports", h.ListReports)
		r.With(allow(authz.ActionExport)).Get("/reports/export", h.ExportReports)
		r.With(allow(authz.ActionRead)).Get("/reports/{id}", h.GetReport)
		r.With(allow(authz.ActionUpdateStatus)).Patch("/reports/{id}/status", h.UpdateStatus)

		r.With(allow(authz.ActionStats)).Get("/reporters/{id}/stats", h.ReporterStats)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LocationsResponse{Countries: h.catalog.All()})
}

func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	if h.catalog.ISO(country) == "" {
		http.Error(w, "Unknown country", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, StatesResponse{Country: country, States: h.catalog.States(country)})
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)

	form, err := parseSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := middleware.PrincipalFrom(r.Context())
	report, err := h.service.SubmitReport(r.Context(), service.SubmitInput{
		Image:        form.Image,
		Coordinates:  form.Coordinates,
		Address:      form.Address,
		Country:      form.Country,
		State:        form.State,
		ReporterID:   p.ID,
		ReporterRole: p.ReporterRole(),
	})
	if err != nil {
		writeServiceError(w, "SubmitReport", err)
		return
	}

	log.Printf("📸 Report %s stored (%s, %d%%) by %s", report.ID, report.Category, report.Confidence, report.ReporterID)
	writeJSON(w, http.StatusAccepted, report)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	img, err := readImage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := img.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Analyze(r.Context(), img)
	if err != nil {
		writeServiceError(w, "Analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, size, err := parsePaging(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.service.QueryReports(r.Context(), f)
	if err != nil {
		writeServiceError(w, "QueryReports", err)
		return
	}

	resp := ListReportsResponse{
		Items:    query.Page(res.Reports, page, size),
		Stats:    res.Stats,
		Total:    len(res.Reports),
		Page:     page,
		PageSize: size,
	}
	if res.Empty() {
		resp.Message = "no results"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportReports(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	n, err := h.service.ExportCSV(r.Context(), f, &buf)
	if err != nil {
		writeServiceError(w, "ExportCSV", err)
		return
	}

	w.Header().Set("Content-Type", query.ContentTypeCSV+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", query.ExportFilename(h.now())))
	w.Header().Set("X-Total-Count", fmt.Sprint(n))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("❌ ERROR writing export: %v", err)
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "GetReport", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Target())
	if err != nil {
		writeServiceError(w, "UpdateStatus", err)
		return
	}

	log.Printf("🔁 Report %s is now %s (by %s)", report.ID, report.Status, middleware.PrincipalFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, report)
}

// ReporterStats serves a reporter's counters. "me" is the caller; other ids need read access.
// Callers without credentials have no counters of their own.
func (h *Handler) ReporterStats(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFrom(r.Context())
	id := chi.URLParam(r, "id")
	if id == "me" {
		id = p.ID
	}
	if p.Anonymous() && id == p.ID {
		http.Error(w, "No reporter identity", http.StatusNotFound)
		return
	}
	if id != p.ID && !h.enforcer.Allowed(p.Role, authz.ActionRead) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	stats, err := h.service.ReporterStats(r.Context(), id)
	if err != nil {
		writeServiceError(w, "ReporterStats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ ERROR encoding response: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateReport):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNoBillboard):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInvalidReport),
		errors.Is(err, classify.ErrEmptyImage),
		errors.Is(err, classify.ErrUnsupportedImage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("❌ ERROR %s: %v", op, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
