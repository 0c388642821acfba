package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/pkg/utils"
)

// Context keys set by Authenticate and read by handlers.
const (
	ContextUserID = "userID"
	ContextEmail  = "userEmail"
	ContextRole   = "userRole"
)

type userFinder interface {
	FindByID(id uuid.UUID) (*models.User, error)
}

// Authenticate validates the Bearer access token and loads the current user
// record, so role changes and deactivations take effect immediately rather
// than at token expiry.
func Authenticate(tokens *utils.TokenManager, users userFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, apperrors.Authentication("Authorization header required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.AbortWithError(c, apperrors.Authentication("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			utils.AbortWithError(c, apperrors.Authentication("Invalid or expired token"))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.AbortWithError(c, apperrors.Authentication("Invalid or expired token"))
			return
		}

		user, err := users.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.AbortWithError(c, apperrors.Authentication("User not found"))
				return
			}
			utils.AbortWithError(c, apperrors.Internal("Failed to load user"))
			return
		}
		if !user.IsActive {
			utils.AbortWithError(c, apperrors.Authorization("Account is deactivated"))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextRole, user.Role)

		c.Next()
	}
}

// RoleAllowed reports whether role is one of the allowed roles.
func RoleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// RequireRoles rejects authenticated users whose role is not in the allowed
// set. Must run after Authenticate.
func RequireRoles(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRole)
		if !exists {
			utils.AbortWithError(c, apperrors.Authentication("Authentication required"))
			return
		}

		role, ok := value.(models.UserRole)
		if !ok || !RoleAllowed(role, allowed) {
			utils.AbortWithError(c, apperrors.Authorization("Insufficient permissions"))
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID from the request context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
