// Package users owns the identity record and password hashing.
package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user's role embedded into token claims.
type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

// User is the credential record. The (Email, TenantID) pair is unique across
// all users; the same email may exist in different tenants. An empty TenantID
// means the default tenant.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	TenantID      string    `json:"tenant_id,omitempty"`
	PasswordHash  string    `json:"-"` // never serialize
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	Role          RoleType  `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// FullName joins the name parts, tolerating either being empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Hasher wraps bcrypt with a tunable work factor.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher. Costs outside bcrypt's range fall back to the
// library default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Verify reports whether password matches hash. bcrypt's comparison is
// constant-time with respect to the hash contents.
func (h Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
