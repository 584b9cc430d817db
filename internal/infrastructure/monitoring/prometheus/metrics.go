// Package prometheus exposes the service's Prometheus metrics: one Metrics
// value holds every instrument, registered against a private registry so
// tests never collide on the global default.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric name.
const namespace = "medassist"

// DefaultHTTPDurationBuckets cover the expected latency range of the API.
var DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Assistant pipeline
	MessagesTotal        *prometheus.CounterVec
	IntentsTotal         *prometheus.CounterVec
	ConflictWarningsTotal *prometheus.CounterVec
	PipelineDuration     prometheus.Histogram

	// Domain
	DoseEventsTotal  *prometheus.CounterVec
	MedicationsAdded prometheus.Counter

	// Infrastructure
	AlertPublishTotal *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	CacheErrorsTotal  prometheus.Counter
}

// NewMetrics builds and registers every instrument on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "path"}),

		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_messages_total",
			Help:      "Messages processed by the assistant pipeline.",
		}, []string{"status"}),
		IntentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_intents_total",
			Help:      "Classified intents by kind.",
		}, []string{"kind"}),
		ConflictWarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_conflict_warnings_total",
			Help:      "Conflict warnings raised, by category and severity.",
		}, []string{"category", "severity"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_pipeline_duration_seconds",
			Help:      "End-to-end assistant pipeline duration.",
			Buckets:   DefaultHTTPDurationBuckets,
		}),

		DoseEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dose_events_total",
			Help:      "Recorded dose events by status.",
		}, []string{"status"}),
		MedicationsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medications_added_total",
			Help:      "Medications added to user lists.",
		}),

		AlertPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_publish_total",
			Help:      "Caregiver alert publishes by topic and outcome.",
		}, []string{"topic", "status"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration by operation.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		CacheErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Conversation store errors.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MessagesTotal,
		m.IntentsTotal,
		m.ConflictWarningsTotal,
		m.PipelineDuration,
		m.DoseEventsTotal,
		m.MedicationsAdded,
		m.AlertPublishTotal,
		m.DBQueryDuration,
		m.CacheErrorsTotal,
	)
	return m
}

// ObserveHTTPRequest records one served request on the HTTP instruments.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
