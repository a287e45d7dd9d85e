package service

import (
	"context"

	"habithero/internal/repository"
	"habithero/pkg/logger"
)

type StatsService interface {
	UserStats(ctx context.Context, userID int64) (*repository.UserStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	log       logger.Logger
}

func NewStatsService(statsRepo repository.StatsRepository, log logger.Logger) StatsService {
	return &statsService{statsRepo: statsRepo, log: log}
}

func (s *statsService) UserStats(ctx context.Context, userID int64) (*repository.UserStats, error) {
	return s.statsRepo.GetUserStats(ctx, userID)
}
