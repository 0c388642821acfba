package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole enumerates the roles used for access control.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleOperator   UserRole = "operator"
	RoleTechnician UserRole = "technician"
	RoleViewer     UserRole = "viewer"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleSuperAdmin, RoleAdmin, RoleOperator, RoleTechnician, RoleViewer:
		return true
	}
	return false
}

// User represents the users table
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	FullName     string    `gorm:"not null;size:255" json:"full_name"`
	Role         UserRole  `gorm:"not null;size:20;default:'viewer'" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
