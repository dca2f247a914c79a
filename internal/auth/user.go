package auth

import "context"

// Account types on the platform.
const (
	AccountTypeStudent    = "student"
	AccountTypeUniversity = "university"
	AccountTypeEmployer   = "employer"
	AccountTypeInvestor   = "investor"
	AccountTypeAdmin      = "admin"
)

// Permission names used across the platform.
const (
	PermissionAdmin               = "admin"
	PermissionManageStudents      = "manage_students"
	PermissionRequestVerification = "request_verification"
	PermissionDecideVerification  = "decide_verifications"
	PermissionViewReputation      = "view_reputation"
	PermissionSubmitRatings       = "submit_ratings"
)

type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	AccountType string   `json:"account_type"`
	// UniversityID links student and staff accounts to their institution's
	// account. Nil for accounts with no institution.
	UniversityID *int64   `json:"university_id,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermissionAdmin)
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}
