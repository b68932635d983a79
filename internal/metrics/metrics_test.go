package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AccessEventRecorded("LOGIN_FAIL")
	m.AccessEventRecorded("LOGIN_FAIL")
	m.AccessEventFailed("LOGOUT")
	m.ChangeEventRecorded("System", "CREATE")
	m.ObservationFailed("UserProfile")
	m.ReportGenerated(true)
	m.ReportGenerated(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessEvents.WithLabelValues("LOGIN_FAIL", "recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessEvents.WithLabelValues("LOGOUT", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChangeEvents.WithLabelValues("System", "CREATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObservationFailures.WithLabelValues("UserProfile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reports.WithLabelValues("error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AccessEventRecorded("LOGIN_SUCCESS")
		m.AccessEventFailed("LOGIN_SUCCESS")
		m.ChangeEventRecorded("System", "DELETE")
		m.ObservationFailed("System")
		m.ReportGenerated(true)
	})
}
