// Package metrics exposes Prometheus instrumentation backed by an injected registry.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a Prometheus registry plus the shared HTTP collectors.
type Registry struct {
	namespace string
	registry  *prometheus.Registry
	inFlight  prometheus.Gauge
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates a Registry with HTTP collectors and the Go runtime collectors registered.
func New(cfg *Config) *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		namespace: cfg.Namespace,
		registry:  reg,
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		r.inFlight,
		r.requests,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Counter registers a labelled counter under the registry namespace.
func (r *Registry) Counter(name, help string, labels ...string) *Counter {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	r.registry.MustRegister(vec)
	return &Counter{vec: vec}
}

// Instrument records request count, latency, and in-flight gauge for next.
func (r *Registry) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := routeLabel(req.URL.Path)

		r.inFlight.Inc()
		defer r.inFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, req)

		status := strconv.Itoa(sw.code)
		r.duration.WithLabelValues(req.Method, route, status).Observe(time.Since(start).Seconds())
		r.requests.WithLabelValues(req.Method, route, status).Inc()
	})
}

// Counter is a nil-safe wrapper over a CounterVec. A nil *Counter discards increments.
type Counter struct {
	vec *prometheus.CounterVec
}

// Inc increments the series identified by values.
func (c *Counter) Inc(values ...string) {
	if c == nil || c.vec == nil {
		return
	}
	c.vec.WithLabelValues(values...).Inc()
}

// routeLabel keeps the first two path segments so ids never become label values.
func routeLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
