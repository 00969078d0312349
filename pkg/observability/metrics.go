// Package observability implements the telemetry Observer on Prometheus.
// The machine core never talks to it directly; the executor reports outcomes
// after each transition is decided, keeping guard logic pure.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a ports.Observer backed by Prometheus collectors.
type Metrics struct {
	transitions  *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	autoRejected *prometheus.CounterVec
}

// NewMetrics registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomflow_transitions_total",
			Help: "Applied booking lifecycle transitions.",
		}, []string{"tenant", "event", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomflow_transitions_rejected_total",
			Help: "Events rejected as invalid for the booking's current state.",
		}, []string{"tenant", "event", "state"}),
		autoRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomflow_auto_approval_rejected_total",
			Help: "Auto-approval evaluations rejected, by reason.",
		}, []string{"tenant", "reason"}),
	}
	reg.MustRegister(m.transitions, m.rejections, m.autoRejected)
	return m
}

func (m *Metrics) TransitionApplied(tenant, event, from, to string) {
	m.transitions.WithLabelValues(tenant, event, to).Inc()
}

func (m *Metrics) TransitionRejected(tenant, event, state string) {
	m.rejections.WithLabelValues(tenant, event, state).Inc()
}

func (m *Metrics) AutoApprovalRejected(tenant, reason string) {
	m.autoRejected.WithLabelValues(tenant, reason).Inc()
}
