// Package repofake provides an in-memory directory repository for tests and
// development mode.
package repofake

import (
	"context"
	"sort"
	"sync"

	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/internal/apperr"
)

var _ directory.Repo = (*FakeDirectoryRepo)(nil)

type membership struct {
	organizationID string
	userID         string
	role           string
	order          int
}

type FakeDirectoryRepo struct {
	tenants     map[string]*directory.Tenant
	orgs        map[string]*directory.Organization
	memberships []membership
	lock        sync.RWMutex
}

func NewFakeDirectoryRepo() *FakeDirectoryRepo {
	return &FakeDirectoryRepo{
		tenants: make(map[string]*directory.Tenant),
		orgs:    make(map[string]*directory.Organization),
	}
}

func (r *FakeDirectoryRepo) CreateTenant(_ context.Context, tenant *directory.Tenant) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, exists := r.tenants[tenant.ID]; exists {
		return apperr.Conflict("tenant already exists")
	}
	cp := *tenant
	r.tenants[tenant.ID] = &cp
	return nil
}

func (r *FakeDirectoryRepo) GetTenant(_ context.Context, id string) (*directory.Tenant, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, apperr.NotFound("tenant not found")
	}
	cp := *t
	return &cp, nil
}

func (r *FakeDirectoryRepo) UpdateTenant(_ context.Context, tenant *directory.Tenant) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.tenants[tenant.ID]; !ok {
		return apperr.NotFound("tenant not found")
	}
	cp := *tenant
	r.tenants[tenant.ID] = &cp
	return nil
}

func (r *FakeDirectoryRepo) DeleteTenant(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.tenants[id]; !ok {
		return apperr.NotFound("tenant not found")
	}
	delete(r.tenants, id)
	return nil
}

func (r *FakeDirectoryRepo) ListTenants(_ context.Context) ([]*directory.Tenant, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	res := make([]*directory.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		cp := *t
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *FakeDirectoryRepo) CreateOrganization(_ context.Context, org *directory.Organization) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, exists := r.orgs[org.ID]; exists {
		return apperr.Conflict("organization already exists")
	}
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *FakeDirectoryRepo) GetOrganization(_ context.Context, id string) (*directory.Organization, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	o, ok := r.orgs[id]
	if !ok {
		return nil, apperr.NotFound("organization not found")
	}
	cp := *o
	return &cp, nil
}

func (r *FakeDirectoryRepo) UpdateOrganization(_ context.Context, org *directory.Organization) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return apperr.NotFound("organization not found")
	}
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *FakeDirectoryRepo) DeleteOrganization(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.orgs[id]; !ok {
		return apperr.NotFound("organization not found")
	}
	delete(r.orgs, id)
	kept := r.memberships[:0]
	for _, m := range r.memberships {
		if m.organizationID != id {
			kept = append(kept, m)
		}
	}
	r.memberships = kept
	return nil
}

func (r *FakeDirectoryRepo) ListOrganizations(_ context.Context, tenantID string) ([]*directory.Organization, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var res []*directory.Organization
	for _, o := range r.orgs {
		if o.TenantID == tenantID {
			cp := *o
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *FakeDirectoryRepo) AddMembership(_ context.Context, organizationID, userID, role string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.orgs[organizationID]; !ok {
		return apperr.NotFound("organization not found")
	}
	for i, m := range r.memberships {
		if m.organizationID == organizationID && m.userID == userID {
			r.memberships[i].role = role
			return nil
		}
	}
	r.memberships = append(r.memberships, membership{
		organizationID: organizationID,
		userID:         userID,
		role:           role,
		order:          len(r.memberships),
	})
	return nil
}

func (r *FakeDirectoryRepo) MembershipsForUser(_ context.Context, userID string) ([]directory.Membership, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var res []directory.Membership
	for _, m := range r.memberships {
		if m.userID != userID {
			continue
		}
		org, ok := r.orgs[m.organizationID]
		if !ok {
			continue
		}
		res = append(res, directory.Membership{
			OrganizationID:   m.organizationID,
			OrganizationName: org.Name,
			Role:             m.role,
		})
	}
	return res, nil
}
