package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/middleware"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

// Register creates a new user account
// POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	user, err := h.users.Register(req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a token pair
// POST /api/v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	pair, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates the token pair using a refresh token
// POST /api/v1/users/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	pair, err := h.users.Refresh(req.RefreshToken)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, pair)
}

// Me returns the authenticated user's profile
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, apperrors.Authentication("Authentication required"))
		return
	}

	user, err := h.users.Get(userID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

type updateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// UpdateMe applies a partial update to the authenticated user's profile
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, apperrors.Authentication("Authentication required"))
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	user, err := h.users.UpdateProfile(userID, req.Email, req.FullName)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword verifies the current password and stores a new one
// POST /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, apperrors.Authentication("Authentication required"))
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "Password changed successfully")
}

type userListQuery struct {
	Role     *string `form:"role"`
	IsActive *bool   `form:"is_active"`
	Page     int     `form:"page,default=1"`
	Limit    int     `form:"limit,default=20"`
}

// List returns a page of users
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var q userListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	users, total, p, err := h.users.List(q.Role, q.IsActive, q.Page, q.Limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.ListResponse(c, users, utils.NewPaginationMeta(p.Page, p.Limit, total))
}

// Get returns a user by ID
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid user ID"))
		return
	}

	user, err := h.users.Get(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// Deactivate soft-disables a user account
// DELETE /api/v1/users/:id
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid user ID"))
		return
	}

	if err := h.users.Deactivate(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "User deactivated successfully")
}
