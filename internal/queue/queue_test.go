package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	body, _ := json.Marshal(map[string]string{"id": "rec-1"})
	require.NoError(t, q.Publish(ctx, Message{Type: TypeRecord, Body: body}))

	messages, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, TypeRecord, msg.Type)
		assert.JSONEq(t, `{"id":"rec-1"}`, string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)

	require.NoError(t, q.Publish(ctx, Message{Type: TypeRecord}))

	// Queue full and context canceled: publish returns instead of blocking.
	cancel()
	err := q.Publish(ctx, Message{Type: TypeRecord})
	assert.ErrorIs(t, err, context.Canceled)
}
