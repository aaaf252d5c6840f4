// Package metrics exposes Prometheus counters for administrative activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for status transitions and the audit trail.
type Metrics struct {
	Registry *prometheus.Registry

	StatusTransitions    *prometheus.CounterVec
	TransitionRejections *prometheus.CounterVec
	AuditEntries         *prometheus.CounterVec
	AuditPublishFailures prometheus.Counter
	StoreDuration        *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry, along with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_status_transitions_total",
			Help: "Committed organization status transitions",
		}, []string{"from", "to"}),
		TransitionRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_transition_rejections_total",
			Help: "Status transitions refused by the transition table",
		}, []string{"from", "to"}),
		AuditEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_audit_entries_total",
			Help: "Audit entries written",
		}, []string{"entity_type", "action"}),
		AuditPublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_audit_publish_failures_total",
			Help: "Audit entries that could not be published to the event stream",
		}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodbank_store_operation_duration_seconds",
			Help:    "Duration of record store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// IncrementTransition records a committed status change.
func (m *Metrics) IncrementTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// IncrementRejection records a transition refused by the gate.
func (m *Metrics) IncrementRejection(from, to string) {
	if m == nil {
		return
	}
	m.TransitionRejections.WithLabelValues(from, to).Inc()
}

// IncrementAudit records a written audit entry.
func (m *Metrics) IncrementAudit(entityType, action string) {
	if m == nil {
		return
	}
	m.AuditEntries.WithLabelValues(entityType, action).Inc()
}

// IncrementPublishFailure records a failed event-stream publish.
func (m *Metrics) IncrementPublishFailure() {
	if m == nil {
		return
	}
	m.AuditPublishFailures.Inc()
}

// ObserveStore records the duration of a store operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
