package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency claims a key, returns false if it was already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a claim (rollback when the write behind it failed)
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetMenu returns the cached menu document, ok is false on a miss
	GetMenu(ctx context.Context) (data []byte, ok bool, err error)

	SetMenu(ctx context.Context, data []byte, ttl time.Duration) error
}

type SessionStore interface {
	// CreateSession stores userID under a new session id
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// GetSession returns domain.ErrUnauthenticated for unknown or expired sessions
	GetSession(ctx context.Context, sessionID string) (string, error)

	DeleteSession(ctx context.Context, sessionID string) error
}
