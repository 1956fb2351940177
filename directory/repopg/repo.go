// Package repopg implements the directory repository on Postgres.
package repopg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/internal/store"
	"github.com/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ directory.Repo = (*Repo)(nil)

type Repo struct {
	db DB
}

func New(db DB) *Repo {
	return &Repo{db: db}
}

// Tenants

func (r *Repo) CreateTenant(ctx context.Context, tenant *directory.Tenant) error {
	query := `INSERT INTO tenants (id, name, is_active, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.IsActive, tenant.CreatedAt)
	if err != nil {
		if store.UniqueViolation(err) {
			return apperr.Conflict("tenant already exists")
		}
		return wrapStoreErr(err, "[DirectoryRepo.CreateTenant] Exec")
	}
	return nil
}

func (r *Repo) GetTenant(ctx context.Context, id string) (*directory.Tenant, error) {
	query := `SELECT id, name, is_active, created_at FROM tenants WHERE id = $1`
	var t directory.Tenant
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, wrapStoreErr(err, "[DirectoryRepo.GetTenant] Scan")
	}
	return &t, nil
}

func (r *Repo) UpdateTenant(ctx context.Context, tenant *directory.Tenant) error {
	query := `UPDATE tenants SET name = $1, is_active = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, tenant.Name, tenant.IsActive, tenant.ID)
	if err != nil {
		return wrapStoreErr(err, "[DirectoryRepo.UpdateTenant] Exec")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found")
	}
	return nil
}

func (r *Repo) DeleteTenant(ctx context.Context, id string) error {
	query := `DELETE FROM tenants WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return wrapStoreErr(err, "[DirectoryRepo.DeleteTenant] Exec")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found")
	}
	return nil
}

func (r *Repo) ListTenants(ctx context.Context) ([]*directory.Tenant, error) {
	query := `SELECT id, name, is_active, created_at FROM tenants ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapStoreErr(err, "[DirectoryRepo.ListTenants] Query")
	}
	defer rows.Close()

	var res []*directory.Tenant
	for rows.Next() {
		var t directory.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "[DirectoryRepo.ListTenants] Scan")
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

// Organizations

func (r *Repo) CreateOrganization(ctx context.Context, org *directory.Organization) error {
	query := `INSERT INTO organizations (id, tenant_id, name, description, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, org.ID, org.TenantID, org.Name, org.Description, org.CreatedAt)
	if err != nil {
		if store.UniqueViolation(err) {
			return apperr.Conflict("organization already exists")
		}
		return wrapStoreErr(err, "[DirectoryRepo.CreateOrganization] Exec")
	}
	return nil
}

func (r *Repo) GetOrganization(ctx context.Context, id string) (*directory.Organization, error) {
	query := `SELECT id, tenant_id, name, description, created_at FROM organizations WHERE id = $1`
	var o directory.Organization
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.TenantID, &o.Name, &o.Description, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("organization not found")
		}
		return nil, wrapStoreErr(err, "[DirectoryRepo.GetOrganization] Scan")
	}
	return &o, nil
}

func (r *Repo) UpdateOrganization(ctx context.Context, org *directory.Organization) error {
	query := `UPDATE organizations SET name = $1, description = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, org.Name, org.Description, org.ID)
	if err != nil {
		return wrapStoreErr(err, "[DirectoryRepo.UpdateOrganization] Exec")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("organization not found")
	}
	return nil
}

func (r *Repo) DeleteOrganization(ctx context.Context, id string) error {
	query := `DELETE FROM organizations WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return wrapStoreErr(err, "[DirectoryRepo.DeleteOrganization] Exec")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("organization not found")
	}
	return nil
}

func (r *Repo) ListOrganizations(ctx context.Context, tenantID string) ([]*directory.Organization, error) {
	query := `SELECT id, tenant_id, name, description, created_at FROM organizations WHERE tenant_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, wrapStoreErr(err, "[DirectoryRepo.ListOrganizations] Query")
	}
	defer rows.Close()

	var res []*directory.Organization
	for rows.Next() {
		var o directory.Organization
		if err := rows.Scan(&o.ID, &o.TenantID, &o.Name, &o.Description, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "[DirectoryRepo.ListOrganizations] Scan")
		}
		res = append(res, &o)
	}
	return res, rows.Err()
}

// Memberships

func (r *Repo) AddMembership(ctx context.Context, organizationID, userID, role string) error {
	query := `
		INSERT INTO organization_members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.Exec(ctx, query, organizationID, userID, role)
	if err != nil {
		return wrapStoreErr(err, "[DirectoryRepo.AddMembership] Exec")
	}
	return nil
}

func (r *Repo) MembershipsForUser(ctx context.Context, userID string) ([]directory.Membership, error) {
	query := `
		SELECT om.organization_id, o.name, om.role
		FROM organization_members om
		JOIN organizations o ON o.id = om.organization_id
		WHERE om.user_id = $1
		ORDER BY om.joined_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapStoreErr(err, "[DirectoryRepo.MembershipsForUser] Query")
	}
	defer rows.Close()

	var res []directory.Membership
	for rows.Next() {
		var m directory.Membership
		if err := rows.Scan(&m.OrganizationID, &m.OrganizationName, &m.Role); err != nil {
			return nil, errors.Wrap(err, "[DirectoryRepo.MembershipsForUser] Scan")
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func wrapStoreErr(err error, context string) error {
	if store.Timeout(err) {
		return apperr.Unavailable(err)
	}
	return errors.Wrap(err, context)
}
