package dev

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the dev server metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "urlgen").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for generation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// metrics holds the Prometheus metrics for the dev server.
type metrics struct {
	rebuildsTotal    *prometheus.CounterVec
	rebuildDuration  prometheus.Histogram
	artifactRoutes   *prometheus.GaugeVec
	reloadClients    prometheus.Gauge
	reloadsSent      prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// newMetrics registers the dev server metrics.
func newMetrics(config MetricsConfig) *metrics {
	if config.Namespace == "" {
		config.Namespace = "urlgen"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(config.Registry)

	return &metrics{
		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "rebuilds_total",
			Help:        "Total number of artifact regenerations by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "rebuild_duration_seconds",
			Help:        "Artifact regeneration duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		artifactRoutes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "artifact_routes",
			Help:        "Number of reversible routes emitted per artifact",
			ConstLabels: config.ConstLabels,
		}, []string{"output"}),

		reloadClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "reload_clients",
			Help:        "Number of connected live reload clients",
			ConstLabels: config.ConstLabels,
		}),

		reloadsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reloads_sent_total",
			Help:        "Total number of reload notifications broadcast",
			ConstLabels: config.ConstLabels,
		}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests handled by the dev server",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),
	}
}

// recordRebuild records the outcome of one regeneration pass.
func (m *metrics) recordRebuild(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.rebuildsTotal.WithLabelValues(status).Inc()
	m.rebuildDuration.Observe(duration.Seconds())
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps an http.Handler with request metrics. Upgrade requests
// pass through unwrapped so the WebSocket handler can hijack the connection.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		m.requestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
