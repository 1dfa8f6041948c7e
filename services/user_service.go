package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// IUserService defines administrative user management.
type IUserService interface {
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]repository.UserSummary, error)
	GetUser(ctx context.Context, id uint) (*repository.UserSummary, error)
	UpdateRole(ctx context.Context, id uint, role string) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*repository.Stats, error)
}

// UserService implements IUserService.
type UserService struct {
	userRepo repository.IUserRepository
	log      *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(repo repository.IUserRepository, log *zap.Logger) IUserService {
	return &UserService{userRepo: repo, log: log}
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]repository.UserSummary, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.InvalidArgument("Invalid role")
	}
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, s.classify("list users", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*repository.UserSummary, error) {
	user, err := s.userRepo.FindSummary(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, s.classify("get user", err)
	}
	return user, nil
}

// UpdateRole changes a user's role. Demoting the only remaining admin is
// rejected.
func (s *UserService) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	next := models.Role(strings.TrimSpace(role))
	if next == "" {
		return nil, apperrors.InvalidArgument("Role required")
	}
	if !next.Valid() {
		return nil, apperrors.InvalidArgument("Invalid role")
	}

	var updated *models.User
	err := s.userRepo.Transaction(ctx, func(tx repository.IUserRepository) error {
		user, err := tx.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin && next != models.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := tx.UpdateRole(ctx, id, next); err != nil {
			return err
		}
		user.Role = next
		updated = user
		return nil
	})
	if err != nil {
		return nil, s.classify("update role", err)
	}
	s.log.Info("user role updated", zap.Uint("user_id", id), zap.String("role", string(next)))
	return updated, nil
}

// DeleteUser removes a user. Their orders and cart lines are kept with the
// owner cleared. Deleting the only remaining admin is rejected.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	err := s.userRepo.Transaction(ctx, func(tx repository.IUserRepository) error {
		user, err := tx.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return s.classify("delete user", err)
	}
	s.log.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

// ensureAnotherAdmin fails unless some admin other than id exists. Admin rows
// stay locked until the transaction ends, so two concurrent demotions cannot
// both pass.
func ensureAnotherAdmin(ctx context.Context, tx repository.IUserRepository, id uint) error {
	admins, err := tx.LockAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	for _, adminID := range admins {
		if adminID != id {
			return nil
		}
	}
	return apperrors.Conflict("Cannot remove the last admin")
}

func (s *UserService) Stats(ctx context.Context) (*repository.Stats, error) {
	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, s.classify("stats", err)
	}
	return stats, nil
}

func (s *UserService) classify(op string, err error) error {
	appErr := apperrors.Classify(err)
	if appErr.Code == apperrors.CodeInternal {
		s.log.Error(op+" failed", zap.Error(err))
	}
	return appErr
}
