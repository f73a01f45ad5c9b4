package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Message is a parsed entry read from a stream.
type Message struct {
	ID    string
	Event MediaEvent
}

// Consumer reads events through a consumer group.
type Consumer interface {
	// EnsureGroup creates the consumer group (and stream) if missing.
	EnsureGroup(ctx context.Context, stream, group string) error
	// Read returns up to count new messages, blocking for at most block.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
	// ReadPending returns messages delivered to this consumer but never acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client redis.Cmdable
}

func NewConsumer(client redis.Cmdable) *RedisConsumer {
	return &RedisConsumer{client: client}
}

func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	logger := log.With().Str("component", "consumer").Str("stream", stream).Str("group", group).Logger()

	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			logger.Debug().Msg("consumer group already exists")
			return nil
		}
		logger.Error().Err(err).Msg("create consumer group failed")
		return fmt.Errorf("create consumer group: %w", err)
	}

	logger.Info().Msg("consumer group created")
	return nil
}

func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.read(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	})
}

func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	// "0" replays this consumer's pending entries instead of new ones.
	return c.read(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	})
}

func (c *RedisConsumer) read(ctx context.Context, args *redis.XReadGroupArgs) ([]Message, error) {
	logger := log.With().Str("component", "consumer").Str("stream", args.Streams[0]).Str("consumer", args.Consumer).Logger()

	streams, err := c.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("read failed")
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseMediaEvent(msg.Values)
			if err != nil {
				logger.Warn().Err(err).Str("msg_id", msg.ID).Msg("skipping malformed message")
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}

	if len(messages) > 0 {
		logger.Debug().Int("count", len(messages)).Msg("read messages")
	}
	return messages, nil
}

func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		log.Error().Err(err).Str("component", "consumer").Str("stream", stream).Strs("ids", messageIDs).Msg("ack failed")
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}
