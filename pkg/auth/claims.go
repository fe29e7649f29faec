package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role names carried in access tokens. The directory service assigns them;
// this API only checks membership.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleAdvisor    = "asesor"
	RoleWorkshop   = "taller"
)

// AccessTokenClaims is the typed view of tokens minted by the hosted auth
// provider. This service validates them but never issues them.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token carries the given role.
func (c *AccessTokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsBackoffice reports whether the token can act on any user's records.
func (c *AccessTokenClaims) IsBackoffice() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleSupervisor)
}
