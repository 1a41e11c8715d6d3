package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UserService handles administrative changes to user accounts.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// SetAdminStatus grants or revokes admin rights of targetID on behalf of actor.
// Admins cannot revoke their own rights.
func (s *UserService) SetAdminStatus(ctx context.Context, actor *models.User, targetID string, isAdmin bool) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, newError(ErrForbidden, ErrAdminRequired, "Admin access required")
	}
	if actor.ID == targetID && !isAdmin {
		return nil, newError(ErrInvalidInput, ErrSelfDemotion, "You cannot remove your own admin status")
	}

	if err := s.repo.UpdateAdminStatus(ctx, targetID, isAdmin); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, ErrUserNotFound, "User with ID %s not found", targetID)
		}
		return nil, fmt.Errorf("failed to update admin status: %w", err)
	}
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user %s: %w", targetID, err)
	}
	return user, nil
}
