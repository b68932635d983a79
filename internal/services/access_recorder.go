package services

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/models"
	"go.uber.org/zap"
)

type AccessEventWriter interface {
	Insert(ctx context.Context, e *models.AccessEvent) error
}

// AccessRecorder appends authentication and authorization events. Recording
// is best-effort: failures are logged and counted, never returned, so they
// cannot change the outcome of the request being recorded.
type AccessRecorder struct {
	events    AccessEventWriter
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewAccessRecorder(w AccessEventWriter, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *AccessRecorder {
	return &AccessRecorder{events: w, publisher: publisher, metrics: m, log: log}
}

// RecordLogin records a login attempt. A failed attempt never carries an
// actor; the attempted username only appears in the details text.
func (r *AccessRecorder) RecordLogin(ctx context.Context, actor *models.Actor, succeeded bool, clientAddr *string, attemptedUsername string) {
	if succeeded && actor != nil {
		r.record(ctx, &models.AccessEvent{
			ActorID:        &actor.ID,
			EventType:      models.AccessLoginSuccess,
			NetworkAddress: clientAddr,
			Details:        fmt.Sprintf("Successful login from IP: %s", displayAddr(clientAddr)),
		})
		return
	}

	r.record(ctx, &models.AccessEvent{
		EventType:      models.AccessLoginFail,
		NetworkAddress: clientAddr,
		Details:        fmt.Sprintf("Failed login attempt for username: %s from IP: %s", attemptedUsername, displayAddr(clientAddr)),
	})
}

// RecordLogout does nothing for anonymous callers.
func (r *AccessRecorder) RecordLogout(ctx context.Context, actor *models.Actor, clientAddr *string) {
	if actor == nil {
		return
	}
	r.record(ctx, &models.AccessEvent{
		ActorID:        &actor.ID,
		EventType:      models.AccessLogout,
		NetworkAddress: clientAddr,
		Details:        "User logged out successfully",
	})
}

func (r *AccessRecorder) RecordAccess(ctx context.Context, actorID *int64, granted bool, clientAddr *string, resource string) {
	e := &models.AccessEvent{
		ActorID:        actorID,
		EventType:      models.AccessDenied,
		NetworkAddress: clientAddr,
		Details:        fmt.Sprintf("Access denied to %s", resource),
	}
	if granted {
		e.EventType = models.AccessGranted
		e.Details = fmt.Sprintf("Access granted to %s", resource)
	}
	r.record(ctx, e)
}

func (r *AccessRecorder) record(ctx context.Context, e *models.AccessEvent) {
	if err := r.events.Insert(ctx, e); err != nil {
		r.metrics.AccessEventFailed(e.EventType)
		r.log.Warn("failed to record access event",
			zap.String("event_type", e.EventType),
			zap.Int64p("actor_id", e.ActorID),
			zap.Stringp("network_address", e.NetworkAddress),
			zap.Error(err),
		)
		return
	}
	r.metrics.AccessEventRecorded(e.EventType)
	publishAccess(ctx, r.publisher, r.log, e)
}

func displayAddr(addr *string) string {
	if addr == nil {
		return "unknown"
	}
	return *addr
}

// ResolveClientAddress picks the originating client address: the first hop of
// a comma-separated forwarded-for header, else the direct peer address, else
// nil. Ports are stripped from the peer address.
func ResolveClientAddress(forwardedFor, remoteAddr string) *string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return clampAddr(first)
		}
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	return clampAddr(remoteAddr)
}

func clampAddr(addr string) *string {
	if len(addr) > models.NetworkAddressMaxLen {
		addr = addr[:models.NetworkAddressMaxLen]
	}
	return &addr
}
