package services

import (
	"context"
	"fmt"

	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/repositories/users"
)

// RoleChecker reports whether a role exists in the role table.
type RoleChecker interface {
	HasRole(role string) bool
}

// AccountService is the user-management surface used by administrators:
// reading a user, assigning a role, suspending and reactivating.
type AccountService struct {
	users  users.Repository
	roles  RoleChecker
	logger logging.Logger
}

func NewAccountService(u users.Repository, roles RoleChecker, l logging.Logger) *AccountService {
	return &AccountService{users: u, roles: roles, logger: l.With("module", "account_service")}
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// SetRole assigns role to the user; the role must be in the table.
func (s *AccountService) SetRole(ctx context.Context, id, role string) (*models.User, error) {
	if !s.roles.HasRole(role) {
		return nil, common.ErrRoleNotFound
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("error setting role: %w", err)
	}
	s.logger.Info(ctx, "role assigned", "user_id", id, "role", role)
	return s.GetUser(ctx, id)
}

// Suspend blocks future logins. Tokens already issued stay admissible until
// they expire or are revoked.
func (s *AccountService) Suspend(ctx context.Context, id string) (*models.User, error) {
	return s.setActive(ctx, id, false)
}

func (s *AccountService) Activate(ctx context.Context, id string) (*models.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *AccountService) setActive(ctx context.Context, id string, active bool) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = active
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("error saving user: %w", err)
	}
	s.logger.Info(ctx, "account status changed", "user_id", id, "active", active)
	return u, nil
}
