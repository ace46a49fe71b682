// Package observability exposes Prometheus metrics for the service.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's collectors. A nil *Metrics is valid and
// records nothing.
//
// Usage:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.RecordQuery(observability.QueryCacheHit)
//	metrics.RecordUpstream("embed", time.Since(start).Seconds(), err)
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestCounter counts HTTP requests.
	// Labels: method, route, status_code
	HTTPRequestCounter *prometheus.CounterVec

	// HTTPRequestDuration measures HTTP API request latency.
	// Labels: method, route
	HTTPRequestDuration *prometheus.HistogramVec

	// UploadCounter counts upload requests by outcome.
	// Labels: outcome (success|rejected|failed)
	UploadCounter *prometheus.CounterVec

	// ChunksIngested counts chunks committed to the document store.
	ChunksIngested prometheus.Counter

	// QueryCounter counts questions by cache outcome.
	// Labels: cache (hit|miss|error)
	QueryCounter *prometheus.CounterVec

	// UpstreamDuration measures extraction, embedding and completion calls.
	// Labels: operation (extract|embed|complete), status (success|error)
	UpstreamDuration *prometheus.HistogramVec

	// DocumentsExpired counts documents removed by retention sweeps.
	DocumentsExpired prometheus.Counter
}

const (
	QueryCacheHit   = "hit"
	QueryCacheMiss  = "miss"
	QueryCacheError = "error"

	UploadSuccess  = "success"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// NewMetrics creates all collectors on a private registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docqa_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"method", "route"},
		),

		UploadCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_uploads_total",
				Help: "Total number of upload requests by outcome",
			},
			[]string{"outcome"},
		),

		ChunksIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docqa_chunks_ingested_total",
				Help: "Total number of chunks committed to the document store",
			},
		),

		QueryCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_queries_total",
				Help: "Total number of questions by cache outcome",
			},
			[]string{"cache"},
		),

		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docqa_upstream_duration_seconds",
				Help:    "Duration of extraction, embedding and completion calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation", "status"},
		),

		DocumentsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docqa_documents_expired_total",
				Help: "Total number of documents removed by the retention window",
			},
		),
	}
}

// RegisterRuntimeCollectors adds Go runtime and process metrics.
func (m *Metrics) RegisterRuntimeCollectors() {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RegisterStateGauges exposes live document and cache sizes.
func (m *Metrics) RegisterStateGauges(documents, cacheEntries func() int) {
	if m == nil {
		return
	}
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "docqa_documents_loaded",
		Help: "Number of documents currently available for questions",
	}, func() float64 { return float64(documents()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "docqa_cache_entries",
		Help: "Number of answers currently cached",
	}, func() float64 { return float64(cacheEntries()) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestCounter.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

func (m *Metrics) RecordUpload(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.UploadCounter.WithLabelValues(outcome).Inc()
	if chunks > 0 {
		m.ChunksIngested.Add(float64(chunks))
	}
}

func (m *Metrics) RecordQuery(cache string) {
	if m == nil {
		return
	}
	m.QueryCounter.WithLabelValues(cache).Inc()
}

// RecordUpstream records the latency of one collaborator call.
func (m *Metrics) RecordUpstream(operation string, durationSeconds float64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.UpstreamDuration.WithLabelValues(operation, status).Observe(durationSeconds)
}

func (m *Metrics) RecordExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DocumentsExpired.Add(float64(n))
}
