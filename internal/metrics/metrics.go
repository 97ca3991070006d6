package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "projecthub"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the service collectors on a private registry.
// All recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	mailOperations       *prometheus.CounterVec
	notificationsCreated *prometheus.CounterVec
	pushes               *prometheus.CounterVec
	schedulerRuns        *prometheus.CounterVec
	activeConnections    prometheus.Gauge
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mailOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_operations_total",
			Help:      "Mail engine operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		notificationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Persisted notification rows by kind.",
		}, []string{"kind"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_pushes_total",
			Help:      "Real-time frames by event and result (delivered or dropped).",
		}, []string{"event", "result"}),
		schedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Project start trigger runs by outcome.",
		}, []string{"outcome"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Currently registered websocket clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.mailOperations,
		m.notificationsCreated,
		m.pushes,
		m.schedulerRuns,
		m.activeConnections,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MailOperation records the outcome of a mail engine operation
func (m *Metrics) MailOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.mailOperations.WithLabelValues(operation, outcome).Inc()
}

// NotificationsCreated adds n persisted rows of the given kind
func (m *Metrics) NotificationsCreated(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsCreated.WithLabelValues(kind).Add(float64(n))
}

// PushDelivered records a frame queued to a client
func (m *Metrics) PushDelivered(event string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(event, "delivered").Inc()
}

// PushDropped records a frame dropped because a client buffer was full
func (m *Metrics) PushDropped(event string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(event, "dropped").Inc()
}

// SchedulerRun records one trigger run
func (m *Metrics) SchedulerRun(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.schedulerRuns.WithLabelValues(outcome).Inc()
}

// ConnectionOpened increments the live connection gauge
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

// ConnectionClosed decrements the live connection gauge
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}
