package postgres

import (
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/verification"
)

// UserDirectory resolves subjects from the users table
type UserDirectory struct {
	db *gorm.DB
}

// NewUserDirectory creates a new subject directory
func NewUserDirectory(db *gorm.DB) verification.SubjectDirectory {
	return &UserDirectory{db: db}
}

// Resolve returns the account type and institution of an active user
func (d *UserDirectory) Resolve(userID int64) (*verification.Subject, error) {
	var row struct {
		AccountType  string
		UniversityID *int64
	}
	err := d.db.Raw("SELECT account_type, university_id FROM users WHERE id = ? AND is_active", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.AccountType == "" {
		return nil, verification.ErrSubjectNotFound
	}
	return &verification.Subject{AccountType: row.AccountType, UniversityID: row.UniversityID}, nil
}
