// Package metrics provides Prometheus metrics for the alumni referrer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every metric on a private registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	searches           *prometheus.CounterVec
	searchDuration     *prometheus.HistogramVec
	stageDuration      *prometheus.HistogramVec
	enrichmentTimeouts prometheus.Counter
	skipped            *prometheus.CounterVec
	outreach           *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "alumni_referrer",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.searches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_total",
		Help:      "Total number of searches by retrieval method and status",
	}, []string{"method", "status"})

	m.searchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_duration_seconds",
		Help:      "Search latency by retrieval method",
		Buckets:   m.histogramBuckets,
	}, []string{"method"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Latency of each pipeline stage",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.enrichmentTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_timeouts_total",
		Help:      "Total number of candidates excluded after an enrichment timeout",
	})

	m.skipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_skipped_total",
		Help:      "Total number of candidates skipped by reason",
	}, []string{"reason"})

	m.outreach = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outreach_messages_total",
		Help:      "Total number of outreach messages by type and generation method",
	}, []string{"type", "method"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

func (m *Manager) RecordSearch(method, status string, duration time.Duration) {
	m.searches.WithLabelValues(method, status).Inc()
	m.searchDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *Manager) RecordStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *Manager) RecordEnrichmentTimeout() {
	m.enrichmentTimeouts.Inc()
}

func (m *Manager) RecordSkipped(reason string) {
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *Manager) RecordOutreach(messageType, method string) {
	m.outreach.WithLabelValues(messageType, method).Inc()
}

func (m *Manager) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(duration.Seconds())
}

// Registry returns the registry holding every metric of the manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the manager registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
