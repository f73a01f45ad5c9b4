package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Publisher adds events to a stream and returns the Redis message ID.
type Publisher interface {
	Publish(ctx context.Context, stream string, event MediaEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client redis.Cmdable
}

func NewPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish appends the event with XADD and an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event MediaEvent) (string, error) {
	logger := log.With().Str("component", "publisher").Str("stream", stream).Str("type", event.Type).Logger()
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		logger.Error().Err(err).Msg("serialize event failed")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		logger.Error().Err(err).Msg("publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	logger.Debug().
		Str("msg_id", messageID).
		Int("keys", len(event.Keys)).
		Dur("duration", time.Since(startTime)).
		Msg("published")
	return messageID, nil
}
