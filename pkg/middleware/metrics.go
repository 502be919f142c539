package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ngutils").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ngutils",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tagOps          *prometheus.CounterVec
	styleClassOps   *prometheus.CounterVec
	activeClients   prometheus.Gauge
	watchers        prometheus.Gauge
	watchErrors     *prometheus.CounterVec
	snapshotErrors  *prometheus.CounterVec
}

// NewMetrics registers the collectors.
//
// Metrics collected:
//   - ngutils_http_requests_total: requests by route pattern, method and status
//   - ngutils_http_request_duration_seconds: request duration by route pattern
//   - ngutils_header_tag_operations_total: header tag calls by result
//   - ngutils_style_class_operations_total: style class calls by operation
//   - ngutils_active_clients: clients with a live page model
//   - ngutils_watchers: connected watch sockets
//   - ngutils_watch_errors_total: watch feed errors by type
//   - ngutils_snapshot_errors_total: snapshot failures by operation
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of API requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "API request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		tagOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "header_tag_operations_total",
			Help:        "Header tag operations by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		styleClassOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "style_class_operations_total",
			Help:        "Form style class operations by op (add, remove, noop)",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		activeClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_clients",
			Help:        "Number of clients with a live page model",
			ConstLabels: config.ConstLabels,
		}),

		watchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers",
			Help:        "Number of connected watch sockets",
			ConstLabels: config.ConstLabels,
		}),

		watchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watch_errors_total",
			Help:        "Watch feed errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		snapshotErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "snapshot_errors_total",
			Help:        "Snapshot store failures by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// Handler returns middleware that records request count and duration,
// labelled with the chi route pattern to keep cardinality bounded.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// TagOperation records a header tag call outcome.
func (m *Metrics) TagOperation(result string) {
	if m != nil {
		m.tagOps.WithLabelValues(result).Inc()
	}
}

// StyleClassOperation records a style class call.
func (m *Metrics) StyleClassOperation(op string) {
	if m != nil {
		m.styleClassOps.WithLabelValues(op).Inc()
	}
}

// ClientOpened records a new page model.
func (m *Metrics) ClientOpened() {
	if m != nil {
		m.activeClients.Inc()
	}
}

// ClientClosed records a dropped page model.
func (m *Metrics) ClientClosed() {
	if m != nil {
		m.activeClients.Dec()
	}
}

// WatcherConnected records a watch socket joining.
func (m *Metrics) WatcherConnected() {
	if m != nil {
		m.watchers.Inc()
	}
}

// WatcherDisconnected records a watch socket leaving.
func (m *Metrics) WatcherDisconnected() {
	if m != nil {
		m.watchers.Dec()
	}
}

// WatchError records a watch feed error.
func (m *Metrics) WatchError(kind string) {
	if m != nil {
		m.watchErrors.WithLabelValues(kind).Inc()
	}
}

// SnapshotError records a snapshot store failure.
func (m *Metrics) SnapshotError(op string) {
	if m != nil {
		m.snapshotErrors.WithLabelValues(op).Inc()
	}
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
