package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus collectors the service exposes.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	slaBreaches  *prometheus.CounterVec
	sweepRuns    prometheus.Counter
	sweepTickets prometheus.Gauge
}

// NewMetrics builds and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itsm_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itsm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itsm_http_errors_total",
			Help: "Domain errors surfaced over HTTP by code.",
		}, []string{"path", "method", "code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itsm_ticket_transitions_total",
			Help: "Applied status transitions by kind and edge.",
		}, []string{"kind", "from", "to"}),
		slaBreaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itsm_sla_breaches_total",
			Help: "SLA breaches observed by the sweep, by kind and clock.",
		}, []string{"kind", "clock"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itsm_sla_sweep_runs_total",
			Help: "Completed SLA sweep runs.",
		}),
		sweepTickets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itsm_sla_sweep_last_tickets",
			Help: "Tickets examined by the last sweep run.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.transitions,
		m.slaBreaches,
		m.sweepRuns,
		m.sweepTickets,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes a finished HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a domain error surfaced to a client.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordTransition counts an applied status transition.
func (m *Metrics) RecordTransition(kind, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, from, to).Inc()
}

// RecordSLABreach counts a breach detected by the sweep.
func (m *Metrics) RecordSLABreach(kind, clock string) {
	if m == nil {
		return
	}
	m.slaBreaches.WithLabelValues(kind, clock).Inc()
}

// RecordSweep records a completed sweep run.
func (m *Metrics) RecordSweep(tickets int) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepTickets.Set(float64(tickets))
}
