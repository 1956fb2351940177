package directory

import "context"

// Repo persists tenants, organizations and memberships.
//
// MembershipsForUser must always read current state; callers embed the
// result into token claims and rely on it never being cached across calls.
type Repo interface {
	CreateTenant(ctx context.Context, tenant *Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	UpdateTenant(ctx context.Context, tenant *Tenant) error
	DeleteTenant(ctx context.Context, id string) error
	ListTenants(ctx context.Context) ([]*Tenant, error)

	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	UpdateOrganization(ctx context.Context, org *Organization) error
	DeleteOrganization(ctx context.Context, id string) error
	ListOrganizations(ctx context.Context, tenantID string) ([]*Organization, error)

	AddMembership(ctx context.Context, organizationID, userID, role string) error
	MembershipsForUser(ctx context.Context, userID string) ([]Membership, error)
}
