package services

import (
	"context"
	"errors"
	"testing"

	"github.com/itgc-audit/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChangeWriter struct {
	events []models.ChangeEvent
	err    error
}

func (w *fakeChangeWriter) Insert(_ context.Context, e *models.ChangeEvent) error {
	if w.err != nil {
		return w.err
	}
	e.ID = int64(len(w.events) + 1)
	w.events = append(w.events, *e)
	return nil
}

func TestObservationChangeType(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want string
	}{
		{"created", Observation{Created: true}, models.ChangeCreate},
		{"updated", Observation{}, models.ChangeUpdate},
		{"deleted", Observation{Deleted: true}, models.ChangeDelete},
		{"deleted wins", Observation{Created: true, Deleted: true}, models.ChangeDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obs.ChangeType())
		})
	}
}

func TestChangeObserver_Observe(t *testing.T) {
	m := newMetrics()
	obs := NewChangeObserver(m, zap.NewNop())
	w := &fakeChangeWriter{}

	event, err := obs.Observe(context.Background(), w, Observation{
		EntityKind: models.EntityKindSystem,
		EntityID:   7,
		ActorID:    int64Ptr(1),
		Created:    true,
		Summary:    "System 'Payroll' was created. Description: HR payroll",
	})
	require.NoError(t, err)
	require.Len(t, w.events, 1)
	assert.Equal(t, models.ChangeCreate, event.ChangeType)
	assert.Equal(t, int64(1), *w.events[0].ActorID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChangeEvents.WithLabelValues(models.EntityKindSystem, models.ChangeCreate)))
}

func TestChangeObserver_ObserveFailure(t *testing.T) {
	m := newMetrics()
	obs := NewChangeObserver(m, zap.NewNop())

	_, err := obs.Observe(context.Background(), &fakeChangeWriter{err: errStorage}, Observation{
		EntityKind: models.EntityKindUserProfile,
		EntityID:   3,
	})

	var oerr *ObservationError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, models.EntityKindUserProfile, oerr.EntityKind)
	assert.Equal(t, models.ChangeUpdate, oerr.ChangeType)
	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObservationFailures.WithLabelValues(models.EntityKindUserProfile)))
}

func TestSummaries(t *testing.T) {
	sys := &models.AuditedSystem{Name: "Payroll", Description: "HR payroll"}
	assert.Equal(t, "System 'Payroll' was created. Description: HR payroll", SystemSummary(sys, models.ChangeCreate))
	assert.Equal(t, "System 'Payroll' was updated. Description: HR payroll", SystemSummary(sys, models.ChangeUpdate))
	assert.Equal(t, "System 'Payroll' was deleted", SystemSummary(sys, models.ChangeDelete))

	p := &models.ActorProfile{Role: models.RoleAdmin, Department: "IT"}
	assert.Equal(t, "User profile for carol was created. Role: Admin, Department: IT", ProfileSummary("carol", p, true))
	assert.Equal(t, "User profile for carol was updated. Role: Admin, Department: IT", ProfileSummary("carol", p, false))
}
