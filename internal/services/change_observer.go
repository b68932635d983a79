package services

import (
	"context"
	"fmt"

	"github.com/itgc-audit/backend/internal/metrics"
	"github.com/itgc-audit/backend/internal/models"
	"go.uber.org/zap"
)

// ChangeEventWriter appends to the change trail. Mutating services pass the
// transaction-bound repo so the event commits or rolls back with the mutation.
type ChangeEventWriter interface {
	Insert(ctx context.Context, e *models.ChangeEvent) error
}

// Observation describes one mutation of an audited entity. Created is set by
// the caller that performed the insert; it is never re-derived from storage.
type Observation struct {
	EntityKind string
	EntityID   int64
	ActorID    *int64
	Created    bool
	Deleted    bool
	Summary    string
}

func (o Observation) ChangeType() string {
	switch {
	case o.Deleted:
		return models.ChangeDelete
	case o.Created:
		return models.ChangeCreate
	default:
		return models.ChangeUpdate
	}
}

type ChangeObserver struct {
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewChangeObserver(m *metrics.Metrics, log *zap.Logger) *ChangeObserver {
	return &ChangeObserver{metrics: m, log: log}
}

// Observe appends exactly one change event for obs. Any failure is returned as
// an *ObservationError and must abort the surrounding transaction.
func (o *ChangeObserver) Observe(ctx context.Context, w ChangeEventWriter, obs Observation) (*models.ChangeEvent, error) {
	event := &models.ChangeEvent{
		ActorID:     obs.ActorID,
		ChangeType:  obs.ChangeType(),
		EntityKind:  obs.EntityKind,
		EntityID:    obs.EntityID,
		Description: obs.Summary,
	}

	if err := w.Insert(ctx, event); err != nil {
		o.metrics.ObservationFailed(obs.EntityKind)
		o.log.Error("change event not recorded, rolling back",
			zap.String("entity_kind", obs.EntityKind),
			zap.Int64("entity_id", obs.EntityID),
			zap.String("change_type", event.ChangeType),
			zap.Error(err),
		)
		return nil, &ObservationError{
			EntityKind: obs.EntityKind,
			EntityID:   obs.EntityID,
			ChangeType: event.ChangeType,
			Err:        err,
		}
	}

	o.metrics.ChangeEventRecorded(event.EntityKind, event.ChangeType)
	return event, nil
}

func SystemSummary(sys *models.AuditedSystem, changeType string) string {
	switch changeType {
	case models.ChangeDelete:
		return fmt.Sprintf("System '%s' was deleted", sys.Name)
	case models.ChangeCreate:
		return fmt.Sprintf("System '%s' was created. Description: %s", sys.Name, sys.Description)
	default:
		return fmt.Sprintf("System '%s' was updated. Description: %s", sys.Name, sys.Description)
	}
}

func ProfileSummary(username string, p *models.ActorProfile, created bool) string {
	verb := "updated"
	if created {
		verb = "created"
	}
	return fmt.Sprintf("User profile for %s was %s. Role: %s, Department: %s", username, verb, p.Role, p.Department)
}
