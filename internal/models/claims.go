package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionWalletRead        = "wallet:read"
	PermissionWalletWrite       = "wallet:write"
	PermissionOrderRead         = "order:read"
	PermissionOrderWrite        = "order:write"
	PermissionSessionWrite      = "session:write"
	PermissionAvailabilityWrite = "availability:write"
	PermissionPayoutWrite       = "payout:write"
	PermissionChangePassword    = "account:change-password"
)

// Account roles
const (
	RoleUser       = "user"
	RoleAstrologer = "astrologer"
	RoleAdmin      = "admin"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionOrderRead,
			PermissionOrderWrite,
			PermissionSessionWrite,
			PermissionAvailabilityWrite,
			PermissionPayoutWrite,
			PermissionChangePassword,
		}
	case RoleAstrologer:
		return []string{
			PermissionWalletRead,
			PermissionSessionWrite,
			PermissionAvailabilityWrite,
			PermissionChangePassword,
		}
	case RoleUser:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionOrderRead,
			PermissionOrderWrite,
			PermissionSessionWrite,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
