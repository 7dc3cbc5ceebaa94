// Package dedup remembers processed webhook event ids in Redis so replays can
// be acknowledged without opening a database transaction. The webhook_events
// table stays authoritative; this is only a fast path.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyDedup = "dedup:%s:%s"
	ttlDedup = 48 * time.Hour
)

// Store tracks processed event ids.
type Store interface {
	// Seen reports whether eventID was marked as processed.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Mark records eventID as processed.
	Mark(ctx context.Context, eventID string) error
}

// NewClient creates a Redis client for addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type redisStore struct {
	rdb   *redis.Client
	scope string
	ttl   time.Duration
}

// NewRedisStore creates a Store whose keys are namespaced by scope.
func NewRedisStore(rdb *redis.Client, scope string) Store {
	return &redisStore{rdb: rdb, scope: scope, ttl: ttlDedup}
}

func (s *redisStore) key(eventID string) string {
	return fmt.Sprintf(keyDedup, s.scope, eventID)
}

func (s *redisStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) Mark(ctx context.Context, eventID string) error {
	if err := s.rdb.Set(ctx, s.key(eventID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

type nopStore struct{}

// NewNopStore returns a Store that never reports an event as seen.
func NewNopStore() Store {
	return nopStore{}
}

func (nopStore) Seen(context.Context, string) (bool, error) { return false, nil }

func (nopStore) Mark(context.Context, string) error { return nil }
