package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the audit subsystem records and what it fails to record.
type Metrics struct {
	AccessEvents        *prometheus.CounterVec
	ChangeEvents        *prometheus.CounterVec
	ObservationFailures *prometheus.CounterVec
	Reports             *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccessEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "itgc_access_events_total",
			Help: "Access events by type and whether they were persisted",
		}, []string{"event_type", "result"}), // result: "recorded", "failed"

		ChangeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "itgc_change_events_total",
			Help: "Change events persisted by entity kind and change type",
		}, []string{"entity_kind", "change_type"}),

		ObservationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "itgc_observation_failures_total",
			Help: "Mutations aborted because their change event could not be persisted",
		}, []string{"entity_kind"}),

		Reports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "itgc_reports_generated_total",
			Help: "Compliance report generations by outcome",
		}, []string{"result"}),
	}
}

func (m *Metrics) AccessEventRecorded(eventType string) {
	if m != nil {
		m.AccessEvents.WithLabelValues(eventType, "recorded").Inc()
	}
}

func (m *Metrics) AccessEventFailed(eventType string) {
	if m != nil {
		m.AccessEvents.WithLabelValues(eventType, "failed").Inc()
	}
}

func (m *Metrics) ChangeEventRecorded(entityKind, changeType string) {
	if m != nil {
		m.ChangeEvents.WithLabelValues(entityKind, changeType).Inc()
	}
}

func (m *Metrics) ObservationFailed(entityKind string) {
	if m != nil {
		m.ObservationFailures.WithLabelValues(entityKind).Inc()
	}
}

func (m *Metrics) ReportGenerated(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Reports.WithLabelValues("ok").Inc()
	} else {
		m.Reports.WithLabelValues("error").Inc()
	}
}
