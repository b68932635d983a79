package services

import (
	"context"
	"time"

	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/models"
	"go.uber.org/zap"
)

// publishChange announces a committed change event on the audit stream.
// Delivery is best-effort: the event is already durable.
func publishChange(ctx context.Context, pub events.Publisher, log *zap.Logger, e *models.ChangeEvent) {
	if pub == nil || e == nil {
		return
	}
	err := pub.Publish(ctx, events.StreamAudit, events.Event{
		Type: events.EventChangeRecorded,
		Payload: map[string]any{
			"id":          e.ID,
			"actor_id":    e.ActorID,
			"change_type": e.ChangeType,
			"entity_kind": e.EntityKind,
			"entity_id":   e.EntityID,
			"description": e.Description,
			"created_at":  e.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		log.Warn("failed to publish change event", zap.Int64("change_event_id", e.ID), zap.Error(err))
	}
}

func publishAccess(ctx context.Context, pub events.Publisher, log *zap.Logger, e *models.AccessEvent) {
	if pub == nil || e == nil {
		return
	}
	err := pub.Publish(ctx, events.StreamAudit, events.Event{
		Type: events.EventAccessRecorded,
		Payload: map[string]any{
			"id":              e.ID,
			"actor_id":        e.ActorID,
			"event_type":      e.EventType,
			"network_address": e.NetworkAddress,
			"details":         e.Details,
			"created_at":      e.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		log.Warn("failed to publish access event", zap.Int64("access_event_id", e.ID), zap.Error(err))
	}
}
