package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type systemFixture struct {
	mock pgxmock.PgxPoolIface
	pub  *fakePublisher
	svc  *SystemService
	obs  *ChangeObserver
}

func newSystemFixture(t *testing.T) *systemFixture {
	mock := newMock(t)
	pub := &fakePublisher{}
	obs := NewChangeObserver(newMetrics(), zap.NewNop())
	svc := NewSystemService(
		mock,
		repositories.NewSystemRepo(mock),
		repositories.NewChangeEventRepo(mock),
		obs,
		pub,
		zap.NewNop(),
	)
	return &systemFixture{mock: mock, pub: pub, svc: svc, obs: obs}
}

func TestSystemService_CreateRecordsChange(t *testing.T) {
	f := newSystemFixture(t)
	alice := int64Ptr(1)
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO audited_systems").
		WithArgs("Payroll", "HR payroll", alice).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	expectChangeEvent(f.mock, alice, models.ChangeCreate, models.EntityKindSystem, 7,
		"System 'Payroll' was created. Description: HR payroll")
	f.mock.ExpectCommit()

	sys, err := f.svc.Create(context.Background(), alice, SystemInput{Name: " Payroll ", Description: "HR payroll"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), sys.ID)
	assert.Equal(t, int64(1), *sys.LastModifiedBy)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.EventChangeRecorded, f.pub.events[0].Type)
	assert.Equal(t, models.ChangeCreate, f.pub.events[0].Payload["change_type"])
}

func TestSystemService_CreateRollsBackWhenChangeNotRecorded(t *testing.T) {
	f := newSystemFixture(t)
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO audited_systems").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	f.mock.ExpectQuery("INSERT INTO change_events").WillReturnError(errStorage)
	f.mock.ExpectRollback()

	sys, err := f.svc.Create(context.Background(), int64Ptr(1), SystemInput{Name: "Payroll"})
	assert.Nil(t, sys)

	var oerr *ObservationError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, models.ChangeCreate, oerr.ChangeType)
	assert.Empty(t, f.pub.events, "nothing is published for a rolled back write")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.obs.metrics.ObservationFailures.WithLabelValues(models.EntityKindSystem)))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSystemService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   SystemInput
	}{
		{"empty name", SystemInput{Name: "   "}},
		{"name too long", SystemInput{Name: strings.Repeat("x", models.SystemNameMaxLen+1)}},
		{"description too long", SystemInput{Name: "Archive", Description: strings.Repeat("a", models.SystemDescriptionMaxLen+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSystemFixture(t)
			_, err := f.svc.Create(context.Background(), nil, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestSystemService_Update(t *testing.T) {
	f := newSystemFixture(t)
	bob := int64Ptr(2)
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("UPDATE audited_systems").
		WithArgs("Payroll", "HR payroll v2", bob, int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	expectChangeEvent(f.mock, bob, models.ChangeUpdate, models.EntityKindSystem, 7,
		"System 'Payroll' was updated. Description: HR payroll v2")
	f.mock.ExpectCommit()

	sys, err := f.svc.Update(context.Background(), bob, 7, SystemInput{Name: "Payroll", Description: "HR payroll v2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), *sys.LastModifiedBy)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSystemService_UpdateMissing(t *testing.T) {
	f := newSystemFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("UPDATE audited_systems").WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectRollback()

	_, err := f.svc.Update(context.Background(), int64Ptr(2), 99, SystemInput{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSystemService_Delete(t *testing.T) {
	tests := []struct {
		name           string
		lastModifiedBy *int64
	}{
		{"attributed to last modifier", int64Ptr(1)},
		{"never attributed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSystemFixture(t)
			now := time.Now()

			f.mock.ExpectBegin()
			f.mock.ExpectQuery("DELETE FROM audited_systems").WithArgs(int64(7)).
				WillReturnRows(pgxmock.NewRows(systemCols).AddRow(int64(7), "Payroll", "HR payroll", tt.lastModifiedBy, now, now))
			expectChangeEvent(f.mock, tt.lastModifiedBy, models.ChangeDelete, models.EntityKindSystem, 7,
				"System 'Payroll' was deleted")
			f.mock.ExpectCommit()

			require.NoError(t, f.svc.Delete(context.Background(), 7))
			assert.NoError(t, f.mock.ExpectationsWereMet())
			require.Len(t, f.pub.events, 1)
			assert.Equal(t, models.ChangeDelete, f.pub.events[0].Payload["change_type"])
		})
	}
}

func TestSystemService_DeleteRollsBackWhenChangeNotRecorded(t *testing.T) {
	f := newSystemFixture(t)
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("DELETE FROM audited_systems").WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(systemCols).AddRow(int64(7), "Payroll", "", int64Ptr(1), now, now))
	f.mock.ExpectQuery("INSERT INTO change_events").WillReturnError(errStorage)
	f.mock.ExpectRollback()

	err := f.svc.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, errStorage)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSystemService_DeleteMissing(t *testing.T) {
	f := newSystemFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("DELETE FROM audited_systems").WithArgs(int64(7)).WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectRollback()

	assert.ErrorIs(t, f.svc.Delete(context.Background(), 7), ErrNotFound)
	assert.Empty(t, f.pub.events)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSystemService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newSystemFixture(t)
	f.pub.err = errors.New("redis down")
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO audited_systems").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(8), now, now))
	f.mock.ExpectQuery("INSERT INTO change_events").
		WillReturnRows(pgxmock.NewRows(insertCols).AddRow(int64(1), now))
	f.mock.ExpectCommit()

	_, err := f.svc.Create(context.Background(), nil, SystemInput{Name: "CRM"})
	assert.NoError(t, err)
}
