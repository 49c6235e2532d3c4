package notify

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const replayPrefix = "webhook:delivered:"

// ReplayProtector claims an event key so it is delivered at most once per TTL.
// Release gives the claim back after a failed attempt.
type ReplayProtector interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisReplayProtector shares claims between worker processes.
type RedisReplayProtector struct {
	Client *redis.Client
}

func (r RedisReplayProtector) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.Client == nil {
		return true, nil
	}
	return r.Client.SetNX(ctx, replayPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r RedisReplayProtector) Release(ctx context.Context, key string) error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Del(ctx, replayPrefix+key).Err()
}

// MemoryReplayProtector keeps claims in process for a single worker.
type MemoryReplayProtector struct {
	mu     sync.Mutex
	claims map[string]time.Time
}

func (m *MemoryReplayProtector) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if exp, ok := m.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	if m.claims == nil {
		m.claims = make(map[string]time.Time)
	}
	m.claims[key] = now.Add(ttl)
	return true, nil
}

func (m *MemoryReplayProtector) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.claims, key)
	m.mu.Unlock()
	return nil
}
