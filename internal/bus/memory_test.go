package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToMatchingTopic(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "room/update")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "room/update", []byte("hello")))

	select {
	case msg := <-ch:
		assert.Equal(t, "room/update", msg.Topic)
		assert.Equal(t, []byte("hello"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMemoryBusIgnoresUnmatchedTopic(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "room/update")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "group/update", []byte("nope")))

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message on unmatched topic: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBusClosesOnContextCancel(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "x")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancel")
	}
}
