package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestSetIdempotency_FirstClaimWins(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:order:test-first-claim"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	ok, err := adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("first claim should succeed")
	}

	ok, _ = adapter.SetIdempotency(ctx, key)
	if ok {
		t.Error("second claim should fail")
	}

	ttl := client.TTL(ctx, key).Val()
	if ttl <= 0 || ttl > idempotencyKeyTTL {
		t.Errorf("unexpected ttl %v", ttl)
	}
}

func TestReleaseIdempotency_AllowsRetry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:order:test-release"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	adapter.SetIdempotency(ctx, key)
	if err := adapter.ReleaseIdempotency(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}

	ok, _ := adapter.SetIdempotency(ctx, key)
	if !ok {
		t.Error("claim after release should succeed")
	}
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:order:test-concurrent"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := adapter.SetIdempotency(ctx, key); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins.Load())
	}
}

func TestMenuCache_RoundTripAndInvalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	client.Del(ctx, menuCacheKey)
	defer client.Del(ctx, menuCacheKey)

	if _, ok, err := adapter.GetMenu(ctx); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`[{"id":1}]`)
	if err := adapter.SetMenu(ctx, payload, time.Minute); err != nil {
		t.Fatalf("set menu: %v", err)
	}
	data, ok, err := adapter.GetMenu(ctx)
	if err != nil || !ok || string(data) != string(payload) {
		t.Errorf("expected hit with payload, got %q ok=%v err=%v", data, ok, err)
	}

	adapter.InvalidateMenu(ctx)
	if _, ok, _ := adapter.GetMenu(ctx); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestSessions(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	sid, err := adapter.CreateSession(ctx, "user-1", time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer client.Del(ctx, sessionKeyPrefix+sid)

	userID, err := adapter.GetSession(ctx, sid)
	if err != nil || userID != "user-1" {
		t.Errorf("expected user-1, got %q err=%v", userID, err)
	}

	if err := adapter.DeleteSession(ctx, sid); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := adapter.GetSession(ctx, sid); err != domain.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
