package service

import (
	"context"
	"strings"

	"habithero/internal/domain"
	"habithero/internal/repository"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type UserService interface {
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, bio string, avatarURL *string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, bio string, avatarURL *string) (*domain.User, error) {
	if len(bio) > 500 {
		return nil, apperrors.ErrBadRequest
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Bio = strings.TrimSpace(bio)
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
