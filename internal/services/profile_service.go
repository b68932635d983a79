package services

import (
	"context"
	"errors"
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

type ProfileInput struct {
	Role       string
	Department string
}

func (in *ProfileInput) normalize() error {
	in.Role = strings.TrimSpace(in.Role)
	in.Department = strings.TrimSpace(in.Department)
	if !models.IsValidRole(in.Role) {
		return invalid("role must be one of %s, %s, %s", models.RoleAdmin, models.RoleUser, models.RoleReadOnly)
	}
	if utf8.RuneCountInString(in.Department) > models.ProfileFieldMaxLen {
		return invalid("department must be at most %d characters", models.ProfileFieldMaxLen)
	}
	return nil
}

// ProfileService writes actor profiles. Creates and updates are attributed to
// the profile's own actor. Deletes are not recorded in the change trail.
type ProfileService struct {
	pool      repositories.Pool
	profiles  *repositories.ProfileRepo
	actors    *repositories.ActorRepo
	changes   *repositories.ChangeEventRepo
	observer  *ChangeObserver
	publisher events.Publisher
	log       *zap.Logger
}

func NewProfileService(
	pool repositories.Pool,
	profiles *repositories.ProfileRepo,
	actors *repositories.ActorRepo,
	changes *repositories.ChangeEventRepo,
	observer *ChangeObserver,
	publisher events.Publisher,
	log *zap.Logger,
) *ProfileService {
	return &ProfileService{
		pool:      pool,
		profiles:  profiles,
		actors:    actors,
		changes:   changes,
		observer:  observer,
		publisher: publisher,
		log:       log,
	}
}

func (s *ProfileService) Create(ctx context.Context, actorID int64, in ProfileInput) (*models.ActorProfile, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	p := &models.ActorProfile{ActorID: actorID, Role: in.Role, Department: in.Department}

	var event *models.ChangeEvent
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		actor, err := s.actors.WithTx(tx).GetByID(ctx, actorID)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("actor %d does not exist", actorID)
		}
		if err != nil {
			return fmt.Errorf("load actor %d: %w", actorID, err)
		}

		if err := s.profiles.WithTx(tx).Insert(ctx, p); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrProfileExists
			}
			return fmt.Errorf("insert profile: %w", err)
		}

		event, err = s.observer.Observe(ctx, s.changes.WithTx(tx), Observation{
			EntityKind: models.EntityKindUserProfile,
			EntityID:   p.ID,
			ActorID:    &p.ActorID,
			Created:    true,
			Summary:    ProfileSummary(actor.Username, p, true),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile created", zap.Int64("profile_id", p.ID), zap.Int64("actor_id", p.ActorID))
	publishChange(ctx, s.publisher, s.log, event)
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, id int64, in ProfileInput) (*models.ActorProfile, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	p := &models.ActorProfile{ID: id, Role: in.Role, Department: in.Department}

	var event *models.ChangeEvent
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.profiles.WithTx(tx).Update(ctx, p); err != nil {
			return fmt.Errorf("update profile %d: %w", id, err)
		}

		actor, err := s.actors.WithTx(tx).GetByID(ctx, p.ActorID)
		if err != nil {
			return fmt.Errorf("load actor %d: %w", p.ActorID, err)
		}

		event, err = s.observer.Observe(ctx, s.changes.WithTx(tx), Observation{
			EntityKind: models.EntityKindUserProfile,
			EntityID:   p.ID,
			ActorID:    &p.ActorID,
			Summary:    ProfileSummary(actor.Username, p, false),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile updated", zap.Int64("profile_id", p.ID))
	publishChange(ctx, s.publisher, s.log, event)
	return p, nil
}

func (s *ProfileService) Delete(ctx context.Context, id int64) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("profile deleted", zap.Int64("profile_id", id))
	return nil
}

func (s *ProfileService) Get(ctx context.Context, id int64) (*models.ActorProfile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) GetByActor(ctx context.Context, actorID int64) (*models.ActorProfile, error) {
	return s.profiles.GetByActorID(ctx, actorID)
}

func (s *ProfileService) List(ctx context.Context) ([]models.ActorProfile, error) {
	return s.profiles.List(ctx)
}
