package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/order-manager/internal/auth"
	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/repository"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

// UserService handles the admin-facing account surface.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// UserUpdate carries mutable account fields. A non-empty Password is
// re-hashed; an empty one leaves the stored hash untouched.
type UserUpdate struct {
	Email    string
	Password string
	Role     domain.Role
}

// Update mutates an account in place.
func (s *UserService) Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Role != "" {
		if !update.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": update.Role})
		}
		user.Role = update.Role
	}
	if update.Password != "" {
		hash, err := auth.HashPassword(update.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.String("user_id", user.ID))
	return user, nil
}

// Delete removes an account. Tokens already issued for it stay valid until
// expiry but stop resolving to a principal, which downgrades them to
// anonymous at the authentication layer.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
