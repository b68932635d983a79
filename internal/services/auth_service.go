package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/repositories"
	"go.uber.org/zap"
)

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Actor     *models.Actor
}

type AuthService struct {
	actors        *repositories.ActorRepo
	recorder      *AccessRecorder
	revocations   auth.RevocationStore
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

func NewAuthService(
	actors *repositories.ActorRepo,
	recorder *AccessRecorder,
	revocations auth.RevocationStore,
	jwtSecret string,
	jwtExpiration time.Duration,
	log *zap.Logger,
) *AuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = auth.DefaultTokenTTL
	}
	return &AuthService{
		actors:        actors,
		recorder:      recorder,
		revocations:   revocations,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

// Login verifies credentials and issues a token. Unknown usernames, wrong
// passwords and inactive actors all return ErrInvalidCredentials and record a
// LOGIN_FAIL event.
func (s *AuthService) Login(ctx context.Context, username, password string, clientAddr *string) (*LoginResult, error) {
	actor, err := s.actors.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		auth.BurnPasswordCheck(password)
		s.recorder.RecordLogin(ctx, nil, false, clientAddr, username)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("load actor: %w", err)
	}

	if !auth.CheckPassword(actor.PasswordHash, password) || !actor.IsActive {
		s.recorder.RecordLogin(ctx, nil, false, clientAddr, username)
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(s.jwtSecret, actor.ID, actor.Username, actor.IsStaff, s.jwtExpiration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.recorder.RecordLogin(ctx, actor, true, clientAddr, username)
	s.log.Info("actor logged in", zap.Int64("actor_id", actor.ID))

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwtExpiration),
		Actor:     actor,
	}, nil
}

// Logout revokes the caller's token and records LOGOUT. Anonymous callers are
// a no-op. A revocation failure is returned after the LOGOUT is recorded.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, clientAddr *string) error {
	if claims == nil {
		return nil
	}

	revokeErr := s.revocations.Revoke(ctx, claims.ID, claims.RemainingTTL())

	// The logout is recorded even when the token could not be revoked.
	s.recorder.RecordLogout(ctx, &models.Actor{ID: claims.ActorID, Username: claims.Username}, clientAddr)
	if revokeErr != nil {
		return fmt.Errorf("revoke token: %w", revokeErr)
	}

	s.log.Info("actor logged out", zap.Int64("actor_id", claims.ActorID))
	return nil
}
