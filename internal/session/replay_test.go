package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReplayGuardMarkOnce(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryReplayGuard(time.Minute)

	marked, err := guard.MarkIfAbsent(ctx, "sess", "dev", time.Minute)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = guard.MarkIfAbsent(ctx, "sess", "dev", time.Minute)
	require.NoError(t, err)
	assert.False(t, marked)

	// Different devices are independent.
	marked, err = guard.MarkIfAbsent(ctx, "sess", "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestMemoryReplayGuardRelease(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryReplayGuard(time.Minute)

	marked, err := guard.MarkIfAbsent(ctx, "sess", "dev", time.Minute)
	require.NoError(t, err)
	require.True(t, marked)

	require.NoError(t, guard.Release(ctx, "sess", "dev"))

	marked, err = guard.MarkIfAbsent(ctx, "sess", "dev", time.Minute)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestMemoryReplayGuardConcurrent(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryReplayGuard(time.Minute)

	const attempts = 64
	var wg sync.WaitGroup
	var successes atomic.Int64

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			marked, err := guard.MarkIfAbsent(ctx, "sess", "dev", time.Minute)
			assert.NoError(t, err)
			if marked {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly one concurrent caller wins the mark.
	assert.Equal(t, int64(1), successes.Load())
}
