package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lighthouse-iot-backend/internal/apperrors"
)

// PaginationMeta is the pagination block attached to list responses.
type PaginationMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// NewPaginationMeta computes the meta block for a page of results.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	return PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(page)*int64(limit) < total,
	}
}

// SuccessResponse sends a standard success JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse sends a success response with 201 status
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// AcceptedResponse sends a success response with 202 status
func AcceptedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data":    data,
	})
}

// ListResponse sends a success response with pagination metadata
func ListResponse(c *gin.Context, data interface{}, meta PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": message},
	})
}

// ErrorResponse translates a domain error into the error envelope. Unclassified
// errors become a generic 500 without leaking internals.
func ErrorResponse(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("")
	}
	c.JSON(appErr.Status, gin.H{
		"success": false,
		"error":   appErr,
	})
}

// AbortWithError is ErrorResponse for middleware chains.
func AbortWithError(c *gin.Context, err error) {
	ErrorResponse(c, err)
	c.Abort()
}
