package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/pkg/utils"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) FindByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) Create(user *models.User) error {
	user.ID = uuid.New()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) Update(id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if email, ok := updates["email"].(string); ok {
		u.Email = email
	}
	if name, ok := updates["full_name"].(string); ok {
		u.FullName = name
	}
	return u, nil
}

func (s *fakeUserStore) UpdatePassword(id uuid.UUID, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *fakeUserStore) EmailExists(email string, excludeID *uuid.UUID) (bool, error) {
	for _, u := range s.users {
		if u.Email == email && (excludeID == nil || u.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) List(filter repository.UserFilter, p repository.Pagination) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) Deactivate(id uuid.UUID) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = false
	return nil
}

func testTokens() *utils.TokenManager {
	return utils.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func testUser(t *testing.T, email, password string, role models.UserRole, active bool) *models.User {
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test Keeper",
		Role:         role,
		IsActive:     active,
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	svc := NewUserService(newFakeUserStore(user), testTokens(), zap.NewNop())

	pair, err := svc.Login("keeper@fleet.example", "lantern-room-9")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
}

func TestLoginWrongPassword(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	svc := NewUserService(newFakeUserStore(user), testTokens(), zap.NewNop())

	_, err := svc.Login("keeper@fleet.example", "wrong")
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}

func TestLoginDeactivatedAccountDeniedWithCorrectPassword(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, false)
	svc := NewUserService(newFakeUserStore(user), testTokens(), zap.NewNop())

	_, err := svc.Login("keeper@fleet.example", "lantern-room-9")
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	tokens := testTokens()
	svc := NewUserService(newFakeUserStore(user), tokens, zap.NewNop())

	access, err := tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	_, err = svc.Refresh(access)
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}

func TestRefreshUsesCurrentRoleNotTokenClaims(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleViewer, true)
	tokens := testTokens()
	store := newFakeUserStore(user)
	svc := NewUserService(store, tokens, zap.NewNop())

	refresh, err := tokens.GenerateRefreshToken(user.ID, user.Email, string(models.RoleViewer))
	require.NoError(t, err)

	// Role promoted after the refresh token was issued.
	user.Role = models.RoleAdmin

	pair, err := svc.Refresh(refresh)
	require.NoError(t, err)

	claims, err := tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestRefreshDeniedForDeactivatedUser(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	tokens := testTokens()
	svc := NewUserService(newFakeUserStore(user), tokens, zap.NewNop())

	refresh, err := tokens.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	user.IsActive = false

	_, err = svc.Refresh(refresh)
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	existing := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	svc := NewUserService(newFakeUserStore(existing), testTokens(), zap.NewNop())

	_, err := svc.Register("keeper@fleet.example", "another-password", "Second Keeper", "viewer")
	assertAppErrorCode(t, err, "CONFLICT_ERROR")

	appErr, _ := apperrors.As(err)
	assert.Equal(t, "keeper@fleet.example", appErr.Details["email"])
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), testTokens(), zap.NewNop())

	_, err := svc.Register("new@fleet.example", "password-123", "New Keeper", "captain")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), testTokens(), zap.NewNop())

	user, err := svc.Register("new@fleet.example", "password-123", "New Keeper", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	svc := NewUserService(newFakeUserStore(user), testTokens(), zap.NewNop())

	err := svc.ChangePassword(user.ID, "not-the-password", "new-password-1")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestChangePasswordStoresNewHash(t *testing.T) {
	user := testUser(t, "keeper@fleet.example", "lantern-room-9", models.RoleOperator, true)
	store := newFakeUserStore(user)
	svc := NewUserService(store, testTokens(), zap.NewNop())

	err := svc.ChangePassword(user.ID, "lantern-room-9", "new-password-1")
	require.NoError(t, err)

	assert.True(t, utils.ComparePassword(user.PasswordHash, "new-password-1"))
	assert.False(t, utils.ComparePassword(user.PasswordHash, "lantern-room-9"))
}

func TestGetMissingUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), testTokens(), zap.NewNop())

	_, err := svc.Get(uuid.New())
	assertAppErrorCode(t, err, "NOT_FOUND")
}
