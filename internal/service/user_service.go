package service

import (
	"context"
	"fmt"

	apperrors "powereye/internal/errors"
	"powereye/internal/model"
	"powereye/internal/repository"
)

// UserService handles user administration.
type UserService interface {
	List(ctx context.Context) ([]model.Profile, error)
	Update(ctx context.Context, id uint, name, role string) error
	Delete(ctx context.Context, requesterID, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]model.Profile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	profiles := make([]model.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

func (s *userService) Update(ctx context.Context, id uint, name, role string) error {
	found, err := s.userRepo.Update(ctx, id, name, role)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	if !found {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user with everything they own. Admins cannot remove
// their own account.
func (s *userService) Delete(ctx context.Context, requesterID, id uint) error {
	if requesterID == id {
		return apperrors.ErrSelfDelete
	}

	found, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if !found {
		return apperrors.ErrUserNotFound
	}
	return nil
}
