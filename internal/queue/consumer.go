package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// pollTimeout bounds each BRPOP so shutdown is noticed promptly.
const pollTimeout = 5 * time.Second

type Consumer struct {
	client *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

// MessageHandler processes one message. A returned error moves the message
// to the dead letter queue.
type MessageHandler func(ctx context.Context, data []byte) error

// DeadLetter wraps a failed message with the reason it failed.
type DeadLetter struct {
	Message  json.RawMessage `json:"message"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
}

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		cfg:    cfg,
		log:    logger.Get(),
	}
}

func (c *Consumer) dlqName() string {
	return c.cfg.Redis.SyncQueue + c.cfg.Redis.DLQSuffix
}

// ConsumeSyncQueue blocks until ctx is done, handing sync jobs to handler
// one at a time.
func (c *Consumer) ConsumeSyncQueue(ctx context.Context, handler MessageHandler) error {
	queueName := c.cfg.Redis.SyncQueue

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, pollTimeout, queueName).Result()
			if err != nil {
				if err == redis.Nil {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := result[1]
			if err := handler(ctx, []byte(message)); err != nil {
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to process message")
				c.deadLetter(ctx, message, err)
			}
		}
	}
}

func (c *Consumer) deadLetter(ctx context.Context, message string, cause error) {
	entry := DeadLetter{Error: cause.Error(), FailedAt: time.Now().UTC()}
	if json.Valid([]byte(message)) {
		entry.Message = json.RawMessage(message)
	} else {
		quoted, _ := json.Marshal(message)
		entry.Message = quoted
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to encode dead letter")
		return
	}

	// The handler may have failed because ctx was cancelled; the DLQ write
	// must still happen.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pollTimeout)
	defer cancel()
	if err := c.client.LPush(writeCtx, c.dlqName(), data).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", c.dlqName()).Msg("Failed to move message to DLQ")
	}
}

// RequeueDeadLetters moves up to limit dead letters back onto the sync queue
// and returns how many were moved.
func (c *Consumer) RequeueDeadLetters(ctx context.Context, limit int) (int, error) {
	moved := 0
	for moved < limit {
		raw, err := c.client.RPop(ctx, c.dlqName()).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, err
		}

		message, err := UnwrapDeadLetter([]byte(raw))
		if err != nil {
			c.log.Warn().Err(err).Msg("Dropping unreadable dead letter")
			continue
		}
		if err := c.client.LPush(ctx, c.cfg.Redis.SyncQueue, message).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// UnwrapDeadLetter returns the original message inside a dead letter.
func UnwrapDeadLetter(raw []byte) ([]byte, error) {
	var entry DeadLetter
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return entry.Message, nil
}
