package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserFilter holds the optional predicates for user listings.
type UserFilter struct {
	Role     *string
	IsActive *bool
}

func (fl UserFilter) build() *Filters {
	f := &Filters{}
	if fl.Role != nil {
		f.Equals("role", *fl.Role)
	}
	if fl.IsActive != nil {
		f.Equals("is_active", *fl.IsActive)
	}
	return f
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update applies a partial update and returns the updated user.
func (r *UserRepository) Update(id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if len(updates) > 0 {
		res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(id)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EmailExists checks whether an email is already in use, optionally excluding
// one user (for self-updates).
func (r *UserRepository) EmailExists(email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != nil {
		q = q.Where("id != ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of users and the total count for the same filters.
func (r *UserRepository) List(filter UserFilter, p Pagination) ([]models.User, int64, error) {
	f := filter.build()

	var total int64
	if err := f.Apply(r.db.Model(&models.User{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := p.Apply(f.Apply(r.db.Model(&models.User{})).Order("created_at DESC")).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Deactivate soft-disables a user account.
func (r *UserRepository) Deactivate(id uuid.UUID) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
