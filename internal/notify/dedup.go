package notify

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// MarkerStore is the time-expiring key-value guard behind notification
// de-duplication. It is best-effort: a race between two instances may let a
// rare duplicate through, which is accepted.
type MarkerStore interface {
	// SetIfAbsent sets the marker and returns true when no live marker
	// existed for key.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Delete drops the marker so the next SetIfAbsent for key succeeds.
	Delete(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MemoryMarkerStore keeps markers in process. Used when no redis address is
// configured, and in tests with a fake clock.
type MemoryMarkerStore struct {
	clock Clock

	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryMarkerStore(clock Clock) *MemoryMarkerStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryMarkerStore{clock: clock, items: make(map[string]time.Time)}
}

func (s *MemoryMarkerStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.items {
		if !exp.After(now) {
			delete(s.items, k)
		}
	}
	if exp, ok := s.items[key]; ok && exp.After(now) {
		return false, nil
	}
	s.items[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryMarkerStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// RedisMarkerStore shares markers across instances via SETNX + TTL.
type RedisMarkerStore struct {
	client *redis.Client
}

func NewRedisMarkerStore(client *redis.Client) *RedisMarkerStore {
	return &RedisMarkerStore{client: client}
}

func (s *RedisMarkerStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}

func (s *RedisMarkerStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
