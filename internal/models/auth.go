package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the identity payload issued by the external identity provider.
type JWTClaims struct {
	UserID         string   `json:"user_id"`
	Role           UserRole `json:"role"`
	MunicipalityID *string  `json:"municipality_id,omitempty"`
	jwt.RegisteredClaims
}

// IsStaff reports whether the caller has platform-wide authority.
func (c *JWTClaims) IsStaff() bool {
	return c != nil && (c.Role == RoleStaff || c.Role == RoleAdmin)
}

// IsOfficial reports whether the caller acts on behalf of a municipality.
func (c *JWTClaims) IsOfficial() bool {
	return c != nil && c.Role == RoleOfficial
}
