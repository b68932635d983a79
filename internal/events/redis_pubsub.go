package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultBacklogSize is how many events per stream are kept for late joiners.
const DefaultBacklogSize = 50

// RedisPublisher publishes on a redis channel and keeps a capped backlog list
// next to it.
type RedisPublisher struct {
	client      *redis.Client
	backlogSize int64
	log         *zap.Logger
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, backlogSize: DefaultBacklogSize, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := BacklogKey(stream)
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, p.backlogSize-1)
		pipe.Publish(ctx, stream, data)
		return nil
	})
	return err
}

type RedisSubscriber struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{client: client, log: log}
}

// Subscribe returns once the subscription is confirmed; handler then runs on a
// background goroutine until ctx is cancelled.
func (s *RedisSubscriber) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	pubsub := s.client.Subscribe(ctx, stream)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, err := decode(msg.Payload)
				if err != nil {
					s.log.Error("failed to unmarshal event", zap.String("stream", stream), zap.Error(err))
					continue
				}
				handler(event)
			}
		}
	}()

	return nil
}

func (s *RedisSubscriber) Recent(ctx context.Context, stream string, n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, BacklogKey(stream), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	// The list is newest first.
	out := make([]Event, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		event, err := decode(raw[i])
		if err != nil {
			s.log.Warn("skipping malformed backlog entry", zap.String("stream", stream), zap.Error(err))
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func decode(payload string) (Event, error) {
	var event Event
	err := json.Unmarshal([]byte(payload), &event)
	return event, err
}
