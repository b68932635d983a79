package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/itgc-audit/backend/internal/db"
	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SystemInput struct {
	Name        string
	Description string
}

func (in *SystemInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(in.Name) > models.SystemNameMaxLen {
		return invalid("name must be at most %d characters", models.SystemNameMaxLen)
	}
	if utf8.RuneCountInString(in.Description) > models.SystemDescriptionMaxLen {
		return invalid("description must be at most %d characters", models.SystemDescriptionMaxLen)
	}
	return nil
}

// SystemService owns every write to audited systems. Each write and its change
// event share one transaction.
type SystemService struct {
	pool      repositories.Pool
	systems   *repositories.SystemRepo
	changes   *repositories.ChangeEventRepo
	observer  *ChangeObserver
	publisher events.Publisher
	log       *zap.Logger
}

func NewSystemService(
	pool repositories.Pool,
	systems *repositories.SystemRepo,
	changes *repositories.ChangeEventRepo,
	observer *ChangeObserver,
	publisher events.Publisher,
	log *zap.Logger,
) *SystemService {
	return &SystemService{
		pool:      pool,
		systems:   systems,
		changes:   changes,
		observer:  observer,
		publisher: publisher,
		log:       log,
	}
}

// Create inserts a system attributed to actorID. actorID may be nil for
// unattributed paths such as imports.
func (s *SystemService) Create(ctx context.Context, actorID *int64, in SystemInput) (*models.AuditedSystem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	sys := &models.AuditedSystem{
		Name:           in.Name,
		Description:    in.Description,
		LastModifiedBy: actorID,
	}

	var event *models.ChangeEvent
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.systems.WithTx(tx).Insert(ctx, sys); err != nil {
			return fmt.Errorf("insert system: %w", err)
		}
		var err error
		event, err = s.observer.Observe(ctx, s.changes.WithTx(tx), Observation{
			EntityKind: models.EntityKindSystem,
			EntityID:   sys.ID,
			ActorID:    sys.LastModifiedBy,
			Created:    true,
			Summary:    SystemSummary(sys, models.ChangeCreate),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("system created", zap.Int64("system_id", sys.ID), zap.String("name", sys.Name))
	publishChange(ctx, s.publisher, s.log, event)
	return sys, nil
}

func (s *SystemService) Update(ctx context.Context, actorID *int64, id int64, in SystemInput) (*models.AuditedSystem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	sys := &models.AuditedSystem{
		ID:             id,
		Name:           in.Name,
		Description:    in.Description,
		LastModifiedBy: actorID,
	}

	var event *models.ChangeEvent
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.systems.WithTx(tx).Update(ctx, sys); err != nil {
			return fmt.Errorf("update system %d: %w", id, err)
		}
		var err error
		event, err = s.observer.Observe(ctx, s.changes.WithTx(tx), Observation{
			EntityKind: models.EntityKindSystem,
			EntityID:   sys.ID,
			ActorID:    sys.LastModifiedBy,
			Summary:    SystemSummary(sys, models.ChangeUpdate),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("system updated", zap.Int64("system_id", sys.ID))
	publishChange(ctx, s.publisher, s.log, event)
	return sys, nil
}

// Delete removes a system. The deletion is attributed to the system's last
// recorded modifier, which may be nil.
func (s *SystemService) Delete(ctx context.Context, id int64) error {
	var event *models.ChangeEvent
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sys, err := s.systems.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete system %d: %w", id, err)
		}
		event, err = s.observer.Observe(ctx, s.changes.WithTx(tx), Observation{
			EntityKind: models.EntityKindSystem,
			EntityID:   sys.ID,
			ActorID:    sys.LastModifiedBy,
			Deleted:    true,
			Summary:    SystemSummary(sys, models.ChangeDelete),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info("system deleted", zap.Int64("system_id", id))
	publishChange(ctx, s.publisher, s.log, event)
	return nil
}

func (s *SystemService) Get(ctx context.Context, id int64) (*models.AuditedSystem, error) {
	return s.systems.GetByID(ctx, id)
}

func (s *SystemService) List(ctx context.Context, query string) ([]models.AuditedSystem, error) {
	return s.systems.List(ctx, repositories.SystemFilter{Query: strings.TrimSpace(query)})
}

func (s *SystemService) Count(ctx context.Context) (int64, error) {
	return s.systems.Count(ctx)
}
