// Package metrics exposes Prometheus metrics for audits and the report server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
)

var (
	FilesAuditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillaudit_files_audited_total",
			Help: "Total number of fulfillment files audited",
		},
		[]string{"category", "status"}, // status: "passed", "failed", "load_error"
	)

	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillaudit_findings_total",
			Help: "Total number of findings emitted",
		},
		[]string{"category", "rule", "severity"},
	)

	AuditDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillaudit_audit_duration_seconds",
			Help:    "Duration of one category audit in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"category"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillaudit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillaudit_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Recorder feeds runner events into the package metrics.
type Recorder struct{}

var _ core.Recorder = Recorder{}

// FileAudited counts a finished file.
func (Recorder) FileAudited(category core.Category, status string) {
	FilesAuditedTotal.WithLabelValues(category.String(), status).Inc()
}

// FindingEmitted counts one finding.
func (Recorder) FindingEmitted(category core.Category, rule string, severity core.Severity) {
	FindingsTotal.WithLabelValues(category.String(), rule, string(severity)).Inc()
}

// CategoryAudited records how long a category took.
func (Recorder) CategoryAudited(category core.Category, d time.Duration) {
	AuditDuration.WithLabelValues(category.String()).Observe(d.Seconds())
}

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the route pattern if available, otherwise use the path
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
