package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricUpstreamRequestsTotal   = "jass_upstream_requests_total"
	MetricUpstreamDurationSeconds = "jass_upstream_request_duration_seconds"
	MetricUpstreamRetriesTotal    = "jass_upstream_retries_total"
	MetricResolverFallbacksTotal  = "jass_resolver_fallbacks_total"
	MetricHTTPRequestsTotal       = "jass_http_requests_total"
	MetricHTTPDurationSeconds     = "jass_http_request_duration_seconds"
	MetricReportsGeneratedTotal   = "jass_reports_generated_total"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	upstreamRetries   *prometheus.CounterVec
	resolverFallbacks *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	reportsGenerated  *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUpstreamRequestsTotal,
			Help: "Requests sent to JASS upstream services.",
		}, []string{"service", "method", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricUpstreamDurationSeconds,
			Help:    "Latency of each upstream request attempt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method"}),
		upstreamRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUpstreamRetriesTotal,
			Help: "Retried upstream requests.",
		}, []string{"service"}),
		resolverFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricResolverFallbacksTotal,
			Help: "Lookup tables that degraded to fallback names after a failed fetch.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPDurationSeconds,
			Help:    "Latency of served HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricReportsGeneratedTotal,
			Help: "Reports generated by kind and format.",
		}, []string{"kind", "format"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamRequests,
		m.upstreamDuration,
		m.upstreamRetries,
		m.resolverFallbacks,
		m.httpRequests,
		m.httpDuration,
		m.reportsGenerated,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUpstream records one finished upstream call. status is 0 for
// transport errors.
func (m *Metrics) ObserveUpstream(service, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(service, method, label).Inc()
	m.upstreamDuration.WithLabelValues(service, method).Observe(elapsed.Seconds())
}

// IncUpstreamRetry counts one retry of an upstream call.
func (m *Metrics) IncUpstreamRetry(service string) {
	if m == nil {
		return
	}
	m.upstreamRetries.WithLabelValues(service).Inc()
}

// IncResolverFallback counts one lookup table that fell back to placeholder names.
func (m *Metrics) IncResolverFallback(kind string) {
	if m == nil {
		return
	}
	m.resolverFallbacks.WithLabelValues(kind).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncReport counts one generated report.
func (m *Metrics) IncReport(kind, format string) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(kind, format).Inc()
}
