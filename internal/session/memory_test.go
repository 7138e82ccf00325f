package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string, expiresAt time.Time) Session {
	return Session{
		ID:        id,
		EventType: EventEntry,
		Token:     "tok-" + id,
		CreatedAt: expiresAt.Add(-2 * time.Minute),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(5 * time.Second)
	expiry := time.Now().Add(2 * time.Minute)

	require.NoError(t, store.Put(ctx, testSession("a", expiry)))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, EventEntry, got.EventType)

	// Duplicate IDs are rejected.
	assert.ErrorIs(t, store.Put(ctx, testSession("a", expiry)), ErrDuplicateID)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent ID is fine.
	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStoreSweepHonorsGrace(t *testing.T) {
	ctx := context.Background()
	grace := 5 * time.Second
	store := NewMemoryStore(grace)

	t0 := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, testSession("expiring", t0)))
	require.NoError(t, store.Put(ctx, testSession("fresh", t0.Add(time.Hour))))

	// Expired but still inside the grace window: kept.
	removed, err := store.Sweep(ctx, t0.Add(grace))
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 2, store.Len())

	// Past the grace window: evicted.
	removed, err = store.Sweep(ctx, t0.Add(grace).Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "expiring")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
