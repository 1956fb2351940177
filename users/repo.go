package users

import "context"

// Repo persists user records. Implementations must enforce the
// (email, tenant id) uniqueness constraint themselves; Create returns a
// conflict error when it is violated, even under concurrent registration.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
