package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

const (
	menuCacheKey      = "menu:all"
	sessionKeyPrefix  = "session:"
	idempotencyKeyTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) GetMenu(ctx context.Context) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, menuCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisAdapter) SetMenu(ctx context.Context, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, menuCacheKey, data, ttl).Err()
}

// InvalidateMenu drops the cached menu so the next read goes to the database.
func (r *RedisAdapter) InvalidateMenu(ctx context.Context) error {
	return r.client.Del(ctx, menuCacheKey).Err()
}

func (r *RedisAdapter) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	if err := r.client.Set(ctx, sessionKeyPrefix+sid, userID, ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

func (r *RedisAdapter) GetSession(ctx context.Context, sessionID string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
