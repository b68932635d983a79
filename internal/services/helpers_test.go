package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var (
	systemCols = []string{"id", "name", "description", "last_modified_by", "created_at", "updated_at"}
	actorCols  = []string{"id", "username", "password_hash", "is_staff", "is_active", "created_at"}
	insertCols = []string{"id", "created_at"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

// expectChangeEvent expects one change_events insert with exactly these values.
func expectChangeEvent(mock pgxmock.PgxPoolIface, actorID *int64, changeType, kind string, entityID int64, description string) {
	mock.ExpectQuery("INSERT INTO change_events").
		WithArgs(actorID, changeType, kind, entityID, description).
		WillReturnRows(pgxmock.NewRows(insertCols).AddRow(int64(100), time.Now()))
}

type fakePublisher struct {
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type fakeAccessWriter struct {
	events []models.AccessEvent
	err    error
}

func (w *fakeAccessWriter) Insert(_ context.Context, e *models.AccessEvent) error {
	if w.err != nil {
		return w.err
	}
	e.ID = int64(len(w.events) + 1)
	e.CreatedAt = time.Now()
	w.events = append(w.events, *e)
	return nil
}

var errStorage = errors.New("storage unavailable")
