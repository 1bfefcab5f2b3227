package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// UserAdminRepository is the interface that wraps methods for director user management
type UserAdminRepository interface {
	// Method List returns every user without credentials, ordered by ID.
	List(ctx context.Context) ([]models.UserListItem, error)
	// Method Totals counts professors and students.
	Totals(ctx context.Context) (*models.UserTotals, error)
	// Method Update edits name and email of the user with the given ID and role.
	//
	// If no user matches ID and role, models.ErrNotFound will be returned.
	Update(ctx context.Context, id int, role models.Role, name, email string) error
}

// AccountManager owns credentials and account removal
type AccountManager interface {
	// Method UpdateCredential stores a freshly salted credential for "password".
	UpdateCredential(ctx context.Context, id int, password string) error
	// Method DeleteAccount removes the account with the given ID and role.
	//
	// If no account matches both, models.ErrNotFound will be returned.
	DeleteAccount(ctx context.Context, id int, role models.Role) error
}

type adminService struct {
	repo     UserAdminRepository
	accounts AccountManager
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repo UserAdminRepository, accounts AccountManager, logger *zap.Logger) *adminService {
	return &adminService{
		repo:     repo,
		accounts: accounts,
		logger:   logger,
	}
}

// ListUsers returns all accounts
func (s *adminService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetTotals returns the number of professors and students
func (s *adminService) GetTotals(ctx context.Context) (*models.UserTotals, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return totals, nil
}

// UpdateUser edits a student or professor.
// The profile is updated first, so a password is only replaced once ID and role are known to match.
func (s *adminService) UpdateUser(ctx context.Context, id int, role models.Role, req models.UpdateUserRequest) error {
	if err := checkManagedRole(role); err != nil {
		return err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return models.NewValidationError(err)
	}

	if err := s.repo.Update(ctx, id, role, req.Name, req.Email); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if req.Password != "" {
		if err := s.accounts.UpdateCredential(ctx, id, req.Password); err != nil {
			return fmt.Errorf("failed to update user password: %w", err)
		}
	}

	s.logger.Info("user updated",
		zap.Int("user_id", id),
		zap.String("role", string(role)),
		zap.Bool("credential_changed", req.Password != ""),
	)
	return nil
}

// DeleteUser removes a student or professor
func (s *adminService) DeleteUser(ctx context.Context, id int, role models.Role) error {
	if err := checkManagedRole(role); err != nil {
		return err
	}

	if err := s.accounts.DeleteAccount(ctx, id, role); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// directors are not managed through these endpoints
func checkManagedRole(role models.Role) error {
	if role != models.RoleStudent && role != models.RoleProfessor {
		return fmt.Errorf("%w: role %q cannot be managed", models.ErrValidation, role)
	}
	return nil
}
