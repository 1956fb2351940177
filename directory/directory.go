// Package directory owns tenants, organizations and organization
// memberships. The auth core consumes it read-only through
// MembershipsForUser; the CRUD surface is plain data-access glue for the
// HTTP layer.
package directory

import "time"

// Tenant is a top-level isolation boundary. User emails are unique only
// within a tenant.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Organization is a grouping a user can belong to, scoped within a tenant.
type Organization struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Membership is the read-only join between a user and an organization,
// embedded into token claims at issuance time.
type Membership struct {
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	Role             string `json:"role"`
}
