package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token ids, and deleted actors, until
// their tokens would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeActor invalidates every token issued to actorID.
	RevokeActor(ctx context.Context, actorID int64, ttl time.Duration) error
	IsActorRevoked(ctx context.Context, actorID int64) (bool, error)
}

// Revoked reports whether the token or the actor it was issued to has been
// revoked.
func Revoked(ctx context.Context, store RevocationStore, claims *Claims) (bool, error) {
	revoked, err := store.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return revoked, err
	}
	return store.IsActorRevoked(ctx, claims.ActorID)
}

type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func revocationKey(jti string) string {
	return "revoked:" + jti
}

func actorRevocationKey(actorID int64) string {
	return "revoked:actor:" + strconv.FormatInt(actorID, 10)
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("token has no id")
	}
	if ttl <= 0 {
		return nil // already expired
	}
	return s.client.Set(ctx, revocationKey(jti), 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) RevokeActor(ctx context.Context, actorID int64, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return s.client.Set(ctx, actorRevocationKey(actorID), 1, ttl).Err()
}

func (s *RedisRevocationStore) IsActorRevoked(ctx context.Context, actorID int64) (bool, error) {
	n, err := s.client.Exists(ctx, actorRevocationKey(actorID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
