package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/user"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user profile by ID
func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var u user.User
	err := r.db.Raw(`
		SELECT id, email, name, account_type, university_id, is_active, created_at, updated_at
		FROM users
		WHERE id = ?
	`, userID).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetPermissions retrieves the permission names granted to a user
func (r *UserRepository) GetPermissions(userID int64) ([]string, error) {
	var perms []string
	err := r.db.Raw(`
		SELECT p.name
		FROM permissions p
		JOIN user_permissions up ON up.permission_id = p.id
		WHERE up.user_id = ?
		ORDER BY p.name
	`, userID).Scan(&perms).Error
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}
