package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"habithero/pkg/logger"
)

type RateLimitRepository interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

// Hit атомарно инкрементирует счётчик ключа и возвращает новое значение.
// TTL ставится только если его ещё нет, так что окно не продлевается
// каждым запросом
func (r *rateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to hit rate limit counter", "key", key, "error", err)
		return 0, err
	}
	return incr.Val(), nil
}
