package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aspectd_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aspectd_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aspectd_scans_total",
			Help: "Total number of aspect scans by strategy and outcome.",
		},
		[]string{"strategy", "status"},
	)

	scanDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aspectd_scan_duration_seconds",
			Help:    "Aspect scan duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	eventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aspectd_events_total",
			Help: "Total number of aspect events produced.",
		},
	)

	scanWorkersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aspectd_scan_workers",
			Help: "Configured size of the scan fan-out worker pool.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(scansTotal)
	prometheus.MustRegister(scanDurationSeconds)
	prometheus.MustRegister(eventsTotal)
	prometheus.MustRegister(scanWorkersActive)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordScan records one completed or failed scan.
func RecordScan(strategy, status string, duration time.Duration, events int) {
	scansTotal.WithLabelValues(strategy, status).Inc()
	scanDurationSeconds.WithLabelValues(strategy).Observe(duration.Seconds())
	eventsTotal.Add(float64(events))
}

// SetScanWorkers publishes the configured worker pool size.
func SetScanWorkers(n int) {
	scanWorkersActive.Set(float64(n))
}

// knownRoutes are the exact paths the server serves.
var knownRoutes = map[string]bool{
	"/":                    true,
	"/healthz":             true,
	"/readyz":              true,
	"/metrics":             true,
	"/api/v1/bodies":       true,
	"/api/v1/aspects/scan": true,
}

// normalizeRoute collapses parameterized and unknown paths to a bounded
// label set so scanners and bots cannot inflate metric cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/bodies/") && strings.HasSuffix(path, "/position") {
		return "/api/v1/bodies/{name}/position"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
