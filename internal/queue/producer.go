package queue

import (
	"context"
	"encoding/json"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

// EnqueueSyncJob pushes a run request. Workers pop from the other end, so
// jobs run in the order they were queued.
func (p *Producer) EnqueueSyncJob(ctx context.Context, job model.SyncJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.cfg.Redis.SyncQueue, data).Err()
}

// QueueDepth reports how many sync jobs are waiting.
func (p *Producer) QueueDepth(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.cfg.Redis.SyncQueue).Result()
}
