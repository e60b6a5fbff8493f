// Package metrics exposes Prometheus instrumentation for ppiviz.
//
// Metrics implements the observer interfaces of the fetcher, the analyzer and
// the layout engine, and records HTTP traffic, live sessions and SSE clients.
// Every collector is registered on the registry passed to New so tests can use
// an isolated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ppiviz"

// Metrics holds all collectors
type Metrics struct {
	// FetchTotal counts interaction-service calls.
	// Labels: source, outcome (ok, empty, error, not_found)
	FetchTotal *prometheus.CounterVec

	// FetchDuration measures interaction-service latency.
	// Labels: source
	FetchDuration *prometheus.HistogramVec

	// CacheTotal counts response cache lookups.
	// Labels: result (hit, miss)
	CacheTotal *prometheus.CounterVec

	// AnalysisTotal counts analysis runs.
	// Labels: method, status (success, error)
	AnalysisTotal *prometheus.CounterVec

	// AnalysisDuration measures analysis run time.
	// Labels: method
	AnalysisDuration *prometheus.HistogramVec

	// LayoutDuration measures layout computation time.
	// Labels: algorithm
	LayoutDuration *prometheus.HistogramVec

	// HTTPRequests counts API requests.
	// Labels: method, code
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures API request latency.
	// Labels: method
	HTTPDuration *prometheus.HistogramVec

	// Sessions tracks live sessions
	Sessions prometheus.Gauge

	// StreamClients tracks connected SSE clients
	StreamClients prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers every collector on reg
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Interaction service calls by source and outcome",
		}, []string{"source", "outcome"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Interaction service latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		CacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		AnalysisTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Analysis runs by method and status",
		}, []string{"method", "status"}),
		AnalysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis run time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"method"}),
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Layout computation time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"algorithm"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by method and status code",
		}, []string{"method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live sessions",
		}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected event stream clients",
		}),
		gatherer: reg,
	}
}

// ObserveFetch records one interaction-service call
func (m *Metrics) ObserveFetch(source, outcome string, elapsed time.Duration) {
	m.FetchTotal.WithLabelValues(source, outcome).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveCache records one response cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheTotal.WithLabelValues(result).Inc()
}

// ObserveAnalysis records one analysis run
func (m *Metrics) ObserveAnalysis(method string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.AnalysisTotal.WithLabelValues(method, status).Inc()
	m.AnalysisDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveLayout records one layout computation
func (m *Metrics) ObserveLayout(algorithm string, elapsed time.Duration) {
	m.LayoutDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

// ObserveRequest records one API request
func (m *Metrics) ObserveRequest(method string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SessionOpened increments the live session gauge
func (m *Metrics) SessionOpened() { m.Sessions.Inc() }

// SessionClosed decrements the live session gauge
func (m *Metrics) SessionClosed() { m.Sessions.Dec() }

// ClientConnected increments the SSE client gauge
func (m *Metrics) ClientConnected() { m.StreamClients.Inc() }

// ClientDisconnected decrements the SSE client gauge
func (m *Metrics) ClientDisconnected() { m.StreamClients.Dec() }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
