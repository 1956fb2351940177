package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// OrganizationClaim is the membership shape embedded into access tokens.
type OrganizationClaim struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

// Claims is the canonical access-token payload. Organization memberships are
// always embedded; a token without them was issued incorrectly.
type Claims struct {
	UserID        string              `json:"userId"`
	Email         string              `json:"email"`
	Role          string              `json:"role"`
	TenantID      string              `json:"tenantId,omitempty"`
	Organizations []OrganizationClaim `json:"organizations"`
	jwt.RegisteredClaims
}
