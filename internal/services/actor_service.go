package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/db"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	usernameMaxLen    = 150
	passwordMinLength = 8
)

type ActorService struct {
	pool        repositories.Pool
	actors      *repositories.ActorRepo
	systems     *repositories.SystemRepo
	profiles    *repositories.ProfileRepo
	access      *repositories.AccessEventRepo
	changes     *repositories.ChangeEventRepo
	revocations auth.RevocationStore
	tokenTTL    time.Duration
	log         *zap.Logger
}

func NewActorService(
	pool repositories.Pool,
	actors *repositories.ActorRepo,
	systems *repositories.SystemRepo,
	profiles *repositories.ProfileRepo,
	access *repositories.AccessEventRepo,
	changes *repositories.ChangeEventRepo,
	revocations auth.RevocationStore,
	tokenTTL time.Duration,
	log *zap.Logger,
) *ActorService {
	return &ActorService{
		pool:        pool,
		actors:      actors,
		systems:     systems,
		profiles:    profiles,
		access:      access,
		changes:     changes,
		revocations: revocations,
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

func (s *ActorService) Register(ctx context.Context, username, password string, isStaff bool) (*models.Actor, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if utf8.RuneCountInString(username) > usernameMaxLen {
		return nil, invalid("username must be at most %d characters", usernameMaxLen)
	}
	if len(password) < passwordMinLength {
		return nil, invalid("password must be at least %d characters", passwordMinLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	actor := &models.Actor{Username: username, PasswordHash: hash, IsStaff: isStaff}
	if err := s.actors.Create(ctx, actor); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create actor: %w", err)
	}

	s.log.Info("actor registered", zap.Int64("actor_id", actor.ID), zap.Bool("is_staff", isStaff))
	return actor, nil
}

func (s *ActorService) Get(ctx context.Context, id int64) (*models.Actor, error) {
	return s.actors.GetByID(ctx, id)
}

func (s *ActorService) List(ctx context.Context) ([]models.Actor, error) {
	return s.actors.List(ctx)
}

// Delete removes an actor after applying the deletion policy of every
// reference to it, all in one transaction. Access history is kept with the
// actor nulled; the actor's profile and change events are removed. Once
// committed, every token issued to the actor is revoked.
func (s *ActorService) Delete(ctx context.Context, id int64) error {
	affected := make(map[string]int64, len(models.ActorReferences))

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		actors := s.actors.WithTx(tx)
		if _, err := actors.GetByID(ctx, id); err != nil {
			return err
		}

		for _, ref := range models.ActorReferences {
			n, err := s.applyPolicy(ctx, tx, ref, id)
			if err != nil {
				return fmt.Errorf("%s %s: %w", ref.Policy, ref.Name, err)
			}
			affected[ref.Name] = n
		}

		return actors.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if s.revocations != nil {
		if err := s.revocations.RevokeActor(ctx, id, s.tokenTTL); err != nil {
			s.log.Error("failed to revoke tokens of deleted actor", zap.Int64("actor_id", id), zap.Error(err))
		}
	}

	fields := []zap.Field{zap.Int64("actor_id", id)}
	for _, ref := range models.ActorReferences {
		fields = append(fields, zap.Int64(ref.Name, affected[ref.Name]))
	}
	s.log.Info("actor deleted", fields...)
	return nil
}

func (s *ActorService) applyPolicy(ctx context.Context, tx pgx.Tx, ref models.ActorReference, actorID int64) (int64, error) {
	switch ref.Name {
	case models.RefSystemLastModifiedBy:
		return s.systems.WithTx(tx).NullifyLastModifiedBy(ctx, actorID)
	case models.RefAccessEventActor:
		return s.access.WithTx(tx).NullifyActor(ctx, actorID)
	case models.RefProfileActor:
		return s.profiles.WithTx(tx).DeleteByActor(ctx, actorID)
	case models.RefChangeEventActor:
		return s.changes.WithTx(tx).DeleteByActor(ctx, actorID)
	}
	return 0, fmt.Errorf("no cleanup for reference %q", ref.Name)
}

// EnsureBootstrapAdmin creates a staff actor with the given credentials when
// no actor has that username yet. It reports whether one was created.
func (s *ActorService) EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.actors.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	if _, err := s.Register(ctx, username, password, true); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
