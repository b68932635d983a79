package services

import (
	"context"
	"strings"
	"testing"

	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveClientAddress(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		remoteAddr   string
		want         *string
	}{
		{"first hop of chain", "1.2.3.4, 5.6.7.8", "10.0.0.1", strPtr("1.2.3.4")},
		{"single forwarded", "9.9.9.9", "10.0.0.1", strPtr("9.9.9.9")},
		{"no header", "", "10.0.0.5", strPtr("10.0.0.5")},
		{"peer with port", "", "10.0.0.5:51234", strPtr("10.0.0.5")},
		{"ipv6 peer with port", "", "[2001:db8::1]:443", strPtr("2001:db8::1")},
		{"blank first hop", " , 5.6.7.8", "10.0.0.1", strPtr("10.0.0.1")},
		{"nothing", "", "", nil},
		{"oversized", strings.Repeat("a", 60), "", strPtr(strings.Repeat("a", models.NetworkAddressMaxLen))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveClientAddress(tt.forwardedFor, tt.remoteAddr))
		})
	}
}

func TestAccessRecorder_FailedLoginHasNoActor(t *testing.T) {
	w := &fakeAccessWriter{}
	pub := &fakePublisher{}
	r := NewAccessRecorder(w, pub, newMetrics(), zap.NewNop())

	// Even when the caller resolved an actor, a failure is never attributed.
	r.RecordLogin(context.Background(), &models.Actor{ID: 2, Username: "bob"}, false, strPtr("10.0.0.5"), "bob")

	require.Len(t, w.events, 1)
	e := w.events[0]
	assert.Equal(t, models.AccessLoginFail, e.EventType)
	assert.Nil(t, e.ActorID)
	assert.Equal(t, "10.0.0.5", *e.NetworkAddress)
	assert.Contains(t, e.Details, "bob")
	assert.Equal(t, "Failed login attempt for username: bob from IP: 10.0.0.5", e.Details)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EventAccessRecorded, pub.events[0].Type)
}

func TestAccessRecorder_SuccessfulLogin(t *testing.T) {
	w := &fakeAccessWriter{}
	r := NewAccessRecorder(w, nil, nil, zap.NewNop())

	r.RecordLogin(context.Background(), &models.Actor{ID: 1, Username: "alice"}, true, strPtr("1.2.3.4"), "alice")

	require.Len(t, w.events, 1)
	assert.Equal(t, models.AccessLoginSuccess, w.events[0].EventType)
	assert.Equal(t, int64(1), *w.events[0].ActorID)
	assert.Equal(t, "Successful login from IP: 1.2.3.4", w.events[0].Details)
}

func TestAccessRecorder_Logout(t *testing.T) {
	w := &fakeAccessWriter{}
	r := NewAccessRecorder(w, nil, nil, zap.NewNop())

	r.RecordLogout(context.Background(), nil, strPtr("1.2.3.4"))
	assert.Empty(t, w.events, "anonymous logout is not recorded")

	r.RecordLogout(context.Background(), &models.Actor{ID: 1}, nil)
	require.Len(t, w.events, 1)
	assert.Equal(t, models.AccessLogout, w.events[0].EventType)
	assert.Nil(t, w.events[0].NetworkAddress)
	assert.Equal(t, "User logged out successfully", w.events[0].Details)
}

func TestAccessRecorder_RecordAccess(t *testing.T) {
	w := &fakeAccessWriter{}
	r := NewAccessRecorder(w, nil, nil, zap.NewNop())

	r.RecordAccess(context.Background(), int64Ptr(4), false, nil, "DELETE /api/v1/systems/7")
	r.RecordAccess(context.Background(), int64Ptr(4), true, nil, "POST /api/v1/systems")

	require.Len(t, w.events, 2)
	assert.Equal(t, models.AccessDenied, w.events[0].EventType)
	assert.Equal(t, "Access denied to DELETE /api/v1/systems/7", w.events[0].Details)
	assert.Equal(t, models.AccessGranted, w.events[1].EventType)
}

func TestAccessRecorder_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := newMetrics()
	pub := &fakePublisher{}
	r := NewAccessRecorder(&fakeAccessWriter{err: errStorage}, pub, m, zap.New(core))

	assert.NotPanics(t, func() {
		r.RecordLogin(context.Background(), nil, false, strPtr("10.0.0.5"), "bob")
	})

	entries := logs.FilterMessage("failed to record access event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AccessLoginFail, entries[0].ContextMap()["event_type"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessEvents.WithLabelValues(models.AccessLoginFail, "failed")))
	assert.Empty(t, pub.events)
}
