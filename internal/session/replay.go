package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ReplayGuard records which (sessionID, deviceID) pairs have already redeemed
// a session. MarkIfAbsent must be linearizable per key: exactly one of any
// set of concurrent callers for the same pair observes true.
type ReplayGuard interface {
	// MarkIfAbsent takes the mark for the pair, keeping it for ttl. It
	// returns false when the pair is already marked.
	MarkIfAbsent(ctx context.Context, sessionID, deviceID string, ttl time.Duration) (bool, error)

	// Release returns a mark taken by MarkIfAbsent, so a redemption rejected
	// after the replay stage (geofence) does not burn the device's attempt.
	Release(ctx context.Context, sessionID, deviceID string) error
}

func replayKey(sessionID, deviceID string) string {
	return sessionID + ":" + deviceID
}

// MemoryReplayGuard backs marks with go-cache so entries expire alongside
// their session instead of accumulating for the process lifetime.
type MemoryReplayGuard struct {
	cache *gocache.Cache
}

// NewMemoryReplayGuard creates a guard whose janitor prunes expired marks at
// the given interval.
func NewMemoryReplayGuard(cleanupInterval time.Duration) *MemoryReplayGuard {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &MemoryReplayGuard{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// MarkIfAbsent takes the mark for the pair. go-cache's Add is atomic: it
// fails for every caller after the first.
func (g *MemoryReplayGuard) MarkIfAbsent(_ context.Context, sessionID, deviceID string, ttl time.Duration) (bool, error) {
	err := g.cache.Add(replayKey(sessionID, deviceID), struct{}{}, ttl)
	return err == nil, nil
}

// Release removes the mark for the pair.
func (g *MemoryReplayGuard) Release(_ context.Context, sessionID, deviceID string) error {
	g.cache.Delete(replayKey(sessionID, deviceID))
	return nil
}

// RedisReplayGuard stores marks as SETNX keys, linearizable across processes.
type RedisReplayGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisReplayGuard creates a guard using the given client.
func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, prefix: "qrpass:replay:"}
}

// MarkIfAbsent takes the mark for the pair via SETNX.
func (g *RedisReplayGuard) MarkIfAbsent(ctx context.Context, sessionID, deviceID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := g.client.SetNX(ctx, g.prefix+replayKey(sessionID, deviceID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release removes the mark for the pair.
func (g *RedisReplayGuard) Release(ctx context.Context, sessionID, deviceID string) error {
	return g.client.Del(ctx, g.prefix+replayKey(sessionID, deviceID)).Err()
}
