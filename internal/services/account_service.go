package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gradesystem/backend/internal/auth/service"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// AccountRepository is the interface that wraps methods for account storage
type AccountRepository interface {
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to look the user up.
	//
	// If no user has such email, models.ErrNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method Create inserts a new user into the database and sets its ID.
	//
	// "user" parameter carries name, email, composed credential and role.
	//
	// If the email is already registered, models.ErrDuplicateAccount will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method UpdateCredential replaces the stored credential of a user.
	//
	// "id" parameter identifies the user, "credential" is the new composed credential.
	//
	// If no user has such ID, models.ErrNotFound will be returned.
	UpdateCredential(ctx context.Context, id int, credential string) error
	// Method Delete removes the user with the given ID and role.
	//
	// If no user matches both, models.ErrNotFound will be returned.
	Delete(ctx context.Context, id int, role models.Role) error
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID int, name string, role models.Role) (string, error)
}

// accountService implements registration and login
type accountService struct {
	repo   AccountRepository
	codec  *service.CredentialCodec
	tokens TokenIssuer
	logger *zap.Logger
	verify func(password, stored string) bool
	// verified against when no usable stored credential exists, so every login failure costs one derivation
	dummyCredential string
}

// NewAccountService creates a new account service
func NewAccountService(repo AccountRepository, codec *service.CredentialCodec, tokens TokenIssuer, logger *zap.Logger) (*accountService, error) {
	dummy, err := codec.NewCredential("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy credential: %w", err)
	}

	return &accountService{
		repo:            repo,
		codec:           codec,
		tokens:          tokens,
		logger:          logger,
		verify:          codec.Verify,
		dummyCredential: dummy,
	}, nil
}

// Register creates a student account and returns its ID
func (s *accountService) Register(ctx context.Context, req models.RegisterRequest) (int, error) {
	return s.RegisterWithRole(ctx, req, models.RoleStudent)
}

// RegisterWithRole creates an account with an explicit role and returns its ID
func (s *accountService) RegisterWithRole(ctx context.Context, req models.RegisterRequest, role models.Role) (int, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := req.Validate(); err != nil {
		return 0, models.NewValidationError(err)
	}
	if !role.IsValid() {
		return 0, fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}

	credential, err := s.codec.NewCredential(req.Password)
	if err != nil {
		s.logger.Error("failed to compose credential", zap.Error(err))
		return 0, fmt.Errorf("failed to compose credential: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: credential,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			s.logger.Info("registration rejected: email already registered")
			return 0, err
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered", zap.Int("user_id", user.ID), zap.String("role", string(role)))
	return user.ID, nil
}

// Login verifies the password and issues a session token.
// An unknown email returns models.ErrNotFound and a wrong password models.ErrInvalidCredentials;
// both take one key derivation.
func (s *accountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, models.NewValidationError(err)
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.verify(req.Password, s.dummyCredential)
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !s.verify(req.Password, user.PasswordHash) {
		if _, err := s.codec.ExtractSalt(user.PasswordHash); err != nil {
			// Verify bails out before deriving on a malformed value
			s.verify(req.Password, s.dummyCredential)
			s.logger.Error("stored credential is malformed", zap.Int("user_id", user.ID), zap.Error(err))
		} else {
			s.logger.Info("login rejected: wrong password", zap.Int("user_id", user.ID))
		}
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Name, user.Role)
	if err != nil {
		s.logger.Error("failed to issue session token", zap.Error(err), zap.Int("user_id", user.ID))
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &models.LoginResult{
		Token: token,
		User:  user.Profile(),
	}, nil
}

// UpdateCredential stores a freshly salted credential for password
func (s *accountService) UpdateCredential(ctx context.Context, id int, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be blank", models.ErrValidation)
	}

	credential, err := s.codec.NewCredential(password)
	if err != nil {
		return fmt.Errorf("failed to compose credential: %w", err)
	}

	if err := s.repo.UpdateCredential(ctx, id, credential); err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	s.logger.Info("credential updated", zap.Int("user_id", id))
	return nil
}

// DeleteAccount removes the account with the given ID when it holds role
func (s *accountService) DeleteAccount(ctx context.Context, id int, role models.Role) error {
	if err := s.repo.Delete(ctx, id, role); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", zap.Int("user_id", id), zap.String("role", string(role)))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
