package auth

import "context"

type PermissionChecker interface {
	CanRequestVerification(userPermissions []string) bool
	CanDecideVerification(userPermissions []string) bool
	CanSubmitRatings(userPermissions []string) bool
	CanViewReputation(userPermissions []string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
	IsAdmin(userPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() *DefaultPermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error) {
	return c.HasAnyPermission(userPermissions, []string{permission}), nil
}

func (c *DefaultPermissionChecker) CanRequestVerificationCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanRequestVerification(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanDecideVerificationCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanDecideVerification(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanSubmitRatingsCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanSubmitRatings(userPermissions), nil
}

func (c *DefaultPermissionChecker) IsAdminCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.IsAdmin(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanRequestVerification(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionRequestVerification, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanDecideVerification(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionDecideVerification, PermissionManageStudents, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanSubmitRatings(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionSubmitRatings, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanViewReputation(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionViewReputation, PermissionManageStudents, PermissionAdmin})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (c *DefaultPermissionChecker) IsAdmin(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionAdmin})
}
