package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// ReportsSubmitted counts stored reports by category and reporter role.
	ReportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billboard_reports_submitted_total",
			Help: "Total number of reports stored",
		},
		[]string{"category", "role"},
	)
	// Classifications counts classifier outcomes, including analyze-only calls.
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billboard_classifications_total",
			Help: "Total number of image classifications by outcome",
		},
		[]string{"category"},
	)
	// StatusTransitions counts authority status changes by target status.
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billboard_status_transitions_total",
			Help: "Total number of report status transitions",
		},
		[]string{"to"},
	)
	// ExportedRows counts CSV rows served.
	ExportedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billboard_export_rows_total",
			Help: "Total number of report rows exported as CSV",
		},
	)
)

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
