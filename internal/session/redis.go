package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values with a TTL covering the grace
// window, so redis evicts them on its own schedule.
type RedisStore struct {
	client *redis.Client
	grace  time.Duration
	prefix string
}

// NewRedisStore creates a store using the given client. Keys are namespaced
// under "qrpass:session:".
func NewRedisStore(client *redis.Client, grace time.Duration) *RedisStore {
	return &RedisStore{client: client, grace: grace, prefix: "qrpass:session:"}
}

// Put inserts a session, rejecting duplicate IDs via SETNX.
func (r *RedisStore) Put(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt) + r.grace
	if ttl <= 0 {
		return fmt.Errorf("session %s already past its grace window", s.ID)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.prefix+s.ID, raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrDuplicateID
	}
	return nil
}

// Get returns the session with the given ID.
func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.prefix+id).Err()
}

// Sweep is a no-op: redis expires keys itself.
func (r *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
