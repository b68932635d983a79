package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisPublishSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 1)
	sub := NewRedisSubscriber(client, zap.NewNop())
	require.NoError(t, sub.Subscribe(ctx, StreamAudit, func(e Event) { received <- e }))

	pub := NewRedisPublisher(client, zap.NewNop())
	require.NoError(t, pub.Publish(ctx, StreamAudit, Event{
		Type:    EventChangeRecorded,
		Payload: map[string]any{"entity_kind": "System", "change_type": "CREATE"},
	}))

	select {
	case e := <-received:
		assert.Equal(t, EventChangeRecorded, e.Type)
		assert.Equal(t, "System", e.Payload["entity_kind"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestRedisRecentIsCappedAndOldestFirst(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	pub := NewRedisPublisher(client, zap.NewNop())
	for i := 0; i < DefaultBacklogSize+5; i++ {
		require.NoError(t, pub.Publish(ctx, StreamAudit, Event{
			Type:    EventAccessRecorded,
			Payload: map[string]any{"seq": i},
		}))
	}

	n, err := client.LLen(ctx, BacklogKey(StreamAudit)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultBacklogSize), n)

	sub := NewRedisSubscriber(client, zap.NewNop())
	recent, err := sub.Recent(ctx, StreamAudit, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// JSON numbers decode as float64.
	assert.Equal(t, float64(DefaultBacklogSize+2), recent[0].Payload["seq"])
	assert.Equal(t, float64(DefaultBacklogSize+4), recent[2].Payload["seq"])

	none, err := sub.Recent(ctx, "events:empty", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
