package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/pkg/utils"
)

type userStore interface {
	FindByID(id uuid.UUID) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(id uuid.UUID, updates map[string]interface{}) (*models.User, error)
	UpdatePassword(id uuid.UUID, passwordHash string) error
	EmailExists(email string, excludeID *uuid.UUID) (bool, error)
	List(filter repository.UserFilter, p repository.Pagination) ([]models.User, int64, error)
	Deactivate(id uuid.UUID) error
}

type UserService struct {
	users  userStore
	tokens *utils.TokenManager
	logger *zap.Logger
}

func NewUserService(users userStore, tokens *utils.TokenManager, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// TokenPair is the response payload for login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates a new user account. Role defaults to viewer.
func (s *UserService) Register(email, password, fullName, role string) (*models.User, error) {
	if role == "" {
		role = string(models.RoleViewer)
	}
	if !models.ValidRole(role) {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown role '%s'", role))
	}

	// Pre-check for a friendly message; the DB unique constraint is the
	// authoritative guard under concurrent registrations.
	exists, err := s.users.EmailExists(email, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, emailConflict(email)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         models.UserRole(role),
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, emailConflict(email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", email),
	)
	return user, nil
}

// Login authenticates a user and returns an access/refresh token pair. A
// deactivated account fails even with the correct password.
func (s *UserService) Login(email, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authentication("Invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.Authentication("Account is deactivated")
	}
	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, apperrors.Authentication("Invalid email or password")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User authenticated", zap.String("user_id", user.ID.String()))
	return pair, nil
}

// Refresh rotates the token pair. The user's role and active flag are re-read
// from the current database record, never trusted from the stale token claims.
func (s *UserService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Authentication("Invalid or expired refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.Authentication("Invalid or expired refresh token")
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authentication("User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.Authentication("Account is deactivated")
	}

	return s.issueTokens(user)
}

func (s *UserService) issueTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User", id)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(id uuid.UUID, email, fullName *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if email != nil {
		exists, err := s.users.EmailExists(*email, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, emailConflict(*email)
		}
		updates["email"] = *email
	}
	if fullName != nil {
		updates["full_name"] = *fullName
	}

	user, err := s.users.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User", id)
		}
		if repository.IsUniqueViolation(err) {
			return nil, emailConflict(*email)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(id uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User", id)
		}
		return err
	}

	if !utils.ComparePassword(user.PasswordHash, currentPassword) {
		return apperrors.Validation("Current password is incorrect")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(id, passwordHash); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("user_id", id.String()))
	return nil
}

// List returns a page of users with the matching total.
func (s *UserService) List(role *string, isActive *bool, page, limit int) ([]models.User, int64, repository.Pagination, error) {
	if role != nil && !models.ValidRole(*role) {
		return nil, 0, repository.Pagination{}, apperrors.Validation(fmt.Sprintf("Unknown role '%s'", *role))
	}
	p := repository.NewPagination(page, limit, 20, 100)
	users, total, err := s.users.List(repository.UserFilter{Role: role, IsActive: isActive}, p)
	if err != nil {
		return nil, 0, p, err
	}
	return users, total, p, nil
}

// Deactivate soft-disables a user account.
func (s *UserService) Deactivate(id uuid.UUID) error {
	if err := s.users.Deactivate(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User", id)
		}
		return err
	}
	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	return nil
}

func emailConflict(email string) error {
	return apperrors.Conflict(
		fmt.Sprintf("Email '%s' is already registered", email),
		map[string]interface{}{"email": email},
	)
}
