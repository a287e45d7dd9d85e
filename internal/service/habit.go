package service

import (
	"context"
	"strings"
	"time"

	"habithero/internal/domain"
	"habithero/internal/repository"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type HabitService interface {
	Create(ctx context.Context, userID int64, name, description, frequency string) (*domain.Habit, error)
	GetByID(ctx context.Context, userID, habitID int64) (*domain.Habit, error)
	List(ctx context.Context, userID int64) ([]*domain.Habit, error)
	Update(ctx context.Context, userID, habitID int64, name, description, frequency string) (*domain.Habit, error)
	Delete(ctx context.Context, userID, habitID int64) error
	Complete(ctx context.Context, userID, habitID int64, note string) (*domain.HabitLog, error)
	Logs(ctx context.Context, userID, habitID int64, limit int) ([]*domain.HabitLog, error)
}

type habitService struct {
	habitRepo repository.HabitRepository
	log       logger.Logger
}

func NewHabitService(habitRepo repository.HabitRepository, log logger.Logger) HabitService {
	return &habitService{habitRepo: habitRepo, log: log}
}

func (s *habitService) Create(ctx context.Context, userID int64, name, description, frequency string) (*domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, apperrors.ErrBadRequest
	}
	if frequency == "" {
		frequency = domain.FrequencyDaily
	}

	habit := &domain.Habit{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Frequency:   frequency,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *habitService) GetByID(ctx context.Context, userID, habitID int64) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	return habit, nil
}

func (s *habitService) List(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	return s.habitRepo.ListByUser(ctx, userID)
}

func (s *habitService) Update(ctx context.Context, userID, habitID int64, name, description, frequency string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		habit.Name = name
	}
	if description != "" {
		habit.Description = strings.TrimSpace(description)
	}
	if frequency != "" {
		habit.Frequency = frequency
	}

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *habitService) Delete(ctx context.Context, userID, habitID int64) error {
	if _, err := s.GetByID(ctx, userID, habitID); err != nil {
		return err
	}

	return s.habitRepo.Delete(ctx, habitID)
}

// Complete пишет отметку выполнения и поднимает last_done_at. Подсчёт серий
// выполнений здесь не ведётся, клиент считает их по журналу сам
func (s *habitService) Complete(ctx context.Context, userID, habitID int64, note string) (*domain.HabitLog, error) {
	habit, err := s.GetByID(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	habitLog := &domain.HabitLog{
		UserID:      userID,
		HabitID:     habitID,
		Note:        strings.TrimSpace(note),
		CompletedAt: now,
	}
	if err := s.habitRepo.CreateLog(ctx, habitLog); err != nil {
		return nil, err
	}

	habit.LastDoneAt = &now
	if err := s.habitRepo.Update(ctx, habit); err != nil {
		s.log.Warn("Failed to update habit last_done_at", "habit_id", habitID, "error", err)
	}

	return habitLog, nil
}

func (s *habitService) Logs(ctx context.Context, userID, habitID int64, limit int) ([]*domain.HabitLog, error) {
	if _, err := s.GetByID(ctx, userID, habitID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	return s.habitRepo.ListLogs(ctx, habitID, limit)
}
