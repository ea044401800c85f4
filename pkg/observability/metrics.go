package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics exposed by the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	EventsCreatedTotal *prometheus.CounterVec

	// Reshape (data migration) metrics
	ReshapeRowsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chronicle_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chronicle_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EventsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chronicle_events_created_total",
				Help: "Total number of audit events created",
			},
			[]string{"api_version"},
		),
		ReshapeRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chronicle_reshape_rows_total",
				Help: "Rows examined by event_data reshaping, by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsCreatedTotal,
		m.ReshapeRowsTotal,
	)

	return m
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware records request count and duration per route.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method, r.URL.Path, strconv.Itoa(rw.status),
			).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(
				r.Method, r.URL.Path,
			).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler returns the Prometheus scrape handler for the registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
