package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process registry. All recording methods accept a nil
// receiver so components can be built without instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	gateDecisions   *prometheus.CounterVec
	cacheOperations *prometheus.CounterVec
	lookups         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_gate_decisions_total",
				Help: "Request gate decisions by gate and outcome",
			},
			[]string{"gate", "outcome"},
		),
		cacheOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_operations_total",
				Help: "Cache operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_lookups_total",
				Help: "User and permission lookups by resource and source",
			},
			[]string{"resource", "source"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gateDecisions,
		m.cacheOperations,
		m.lookups,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) GateDecision(gate string, outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(gate, outcome).Inc()
}

func (m *Metrics) CacheOperation(operation string, result string) {
	if m == nil {
		return
	}
	m.cacheOperations.WithLabelValues(operation, result).Inc()
}

// Lookup records whether a user or permission was served from cache or store.
func (m *Metrics) Lookup(resource string, source string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(resource, source).Inc()
}

func (m *Metrics) ObserveRequest(method string, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
