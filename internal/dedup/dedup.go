// Package dedup remembers processed payment notification ids in front of
// the processed_events table.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "stripe:event:"
	TTL       = 72 * time.Hour
)

type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	// Mark records eventID and reports false if it was already recorded.
	Mark(ctx context.Context, eventID string) (bool, error)
}

type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis: exists %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (r *Redis) Mark(ctx context.Context, eventID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), TTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis: setnx %s: %w", eventID, err)
	}
	return ok, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Memory is a process-local Deduper without expiry.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]struct{}{}}
}

func (m *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[eventID]
	return ok, nil
}

func (m *Memory) Mark(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return false, nil
	}
	m.seen[eventID] = struct{}{}
	return true, nil
}

// Nop never reports a duplicate.
type Nop struct{}

func (Nop) Seen(context.Context, string) (bool, error) { return false, nil }
func (Nop) Mark(context.Context, string) (bool, error) { return true, nil }
