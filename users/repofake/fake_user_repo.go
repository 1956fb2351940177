// Package repofake provides an in-memory user repository for tests and
// development mode. It mirrors the store-level uniqueness semantics of the
// Postgres implementation.
package repofake

import (
	"context"
	"sync"

	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byKey map[string]*users.User // (email, tenant) -> user
	byID  map[string]*users.User
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byKey: make(map[string]*users.User),
		byID:  make(map[string]*users.User),
	}
}

func key(email, tenantID string) string {
	return email + "\x00" + tenantID
}

func (r *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	k := key(user.Email, user.TenantID)
	if _, exists := r.byKey[k]; exists {
		return apperr.Conflict("user already exists")
	}
	cp := *user
	r.byKey[k] = &cp
	r.byID[user.ID] = &cp
	return nil
}

func (r *FakeUserRepo) GetByEmailAndTenant(_ context.Context, email, tenantID string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.byKey[key(email, tenantID)]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

// Count reports the number of stored users.
func (r *FakeUserRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byKey)
}
