package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frames_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	transformsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_transforms_total",
			Help: "Total frame transformations performed, by frame pair and theory.",
		},
		[]string{"origin", "destination", "theory"},
	)

	transformErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_transform_errors_total",
			Help: "Frame transformation failures, by reason.",
		},
		[]string{"reason"},
	)

	eopFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_eop_fetches_total",
			Help: "EOP fetch attempts, by result.",
		},
		[]string{"result"},
	)

	eopAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "frames_eop_age_seconds",
			Help: "Age of the loaded EOP table in seconds (-1 when no table is loaded).",
		},
	)

	eopRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "frames_eop_records",
			Help: "Number of records in the loaded EOP table.",
		},
	)

	rotationCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "frames_rotation_cache_hits_total",
			Help: "Rotation cache hits.",
		},
	)

	rotationCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "frames_rotation_cache_misses_total",
			Help: "Rotation cache misses.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(transformsTotal)
	prometheus.MustRegister(transformErrorsTotal)
	prometheus.MustRegister(eopFetchesTotal)
	prometheus.MustRegister(eopAgeSeconds)
	prometheus.MustRegister(eopRecords)
	prometheus.MustRegister(rotationCacheHits)
	prometheus.MustRegister(rotationCacheMisses)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTransform counts one successful transformation for the given
// frame pair and resolved theory.
func RecordTransform(origin, destination, theory string) {
	transformsTotal.WithLabelValues(origin, destination, theory).Inc()
}

// RecordTransformError counts one failed transformation.
func RecordTransformError(reason string) {
	transformErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordEOPFetch counts one EOP fetch attempt; result is "success" or "error".
func RecordEOPFetch(result string) {
	eopFetchesTotal.WithLabelValues(result).Inc()
}

// SetEOPAge updates the EOP table age gauge.
func SetEOPAge(seconds float64) {
	eopAgeSeconds.Set(seconds)
}

// SetEOPRecords updates the loaded-record-count gauge.
func SetEOPRecords(n int) {
	eopRecords.Set(float64(n))
}

// RecordRotationCacheHit counts one rotation cache hit.
func RecordRotationCacheHit() {
	rotationCacheHits.Inc()
}

// RecordRotationCacheMiss counts one rotation cache miss.
func RecordRotationCacheMiss() {
	rotationCacheMisses.Inc()
}

// knownRoutes is the fixed set of path labels the server exposes. Anything
// else collapses to "other" so scanners cannot inflate label cardinality.
var knownRoutes = map[string]bool{
	"/":                        true,
	"/healthz":                 true,
	"/readyz":                  true,
	"/metrics":                 true,
	"/api/v1/eop/metadata":     true,
	"/api/v1/eop/fetch":        true,
	"/api/v1/transform":        true,
	"/api/v1/transform/batch":  true,
	"/api/v1/transform/orbit":  true,
	"/api/v1/cache/stats":      true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
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
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}
