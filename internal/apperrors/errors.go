package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the closed set of domain errors the API translates to HTTP
// responses. Code is machine-readable and stable; Message is for humans;
// Details is optional structured context. Anything that is not an *AppError
// maps to a generic 500.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Status  int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NotFound builds a 404 error for a missing resource.
func NotFound(resource string, identifier interface{}) *AppError {
	message := fmt.Sprintf("%s not found", resource)
	if identifier != nil {
		message = fmt.Sprintf("%s with id '%v' not found", resource, identifier)
	}
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Details: map[string]interface{}{"resource": resource},
		Status:  http.StatusNotFound,
	}
}

// Validation builds a 400 error for a semantically invalid request.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// Authentication builds a 401 error.
func Authentication(message string) *AppError {
	if message == "" {
		message = "Invalid credentials"
	}
	return &AppError{
		Code:    "AUTHENTICATION_ERROR",
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Authorization builds a 403 error.
func Authorization(message string) *AppError {
	if message == "" {
		message = "Access denied"
	}
	return &AppError{
		Code:    "AUTHORIZATION_ERROR",
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// Conflict builds a 409 error for uniqueness violations.
func Conflict(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Code:    "CONFLICT_ERROR",
		Message: message,
		Details: details,
		Status:  http.StatusConflict,
	}
}

// Internal builds a 500 error with a short diagnostic string. Internal
// exception text is never forwarded to clients beyond this message.
func Internal(message string) *AppError {
	if message == "" {
		message = "Internal server error"
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// As unwraps err into an *AppError when possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
