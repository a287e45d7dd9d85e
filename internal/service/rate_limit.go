package service

import (
	"context"
	"fmt"
	"time"

	"habithero/internal/repository"
	"habithero/pkg/logger"
)

type RateLimitService interface {
	Allow(ctx context.Context, scope, key string, limit int, window time.Duration) (bool, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{rateLimitRepo: rateLimitRepo, log: log}
}

// Allow — один атомарный инкремент на запрос; лимит превышен, когда счётчик
// окна перевалил за limit. При недоступном redis пропускаем запрос: лимитер
// деградирует, сервис продолжает работать
func (s *rateLimitService) Allow(ctx context.Context, scope, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", scope, key)

	count, err := s.rateLimitRepo.Hit(ctx, redisKey, window)
	if err != nil {
		s.log.Warn("Rate limiter unavailable, allowing request", "scope", scope, "error", err)
		return true, nil
	}

	return count <= int64(limit), nil
}
