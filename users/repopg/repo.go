// Package repopg implements the user repository on Postgres.
package repopg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/internal/store"
	"github.com/meridianhq/go-identity-server/users"
	"github.com/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ users.Repo = (*Repo)(nil)

type Repo struct {
	db DB
}

func New(db DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, role, email_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, string(user.Role), user.EmailVerified, user.CreatedAt,
	)
	if err != nil {
		if store.UniqueViolation(err) {
			return apperr.Conflict("user already exists")
		}
		if store.Timeout(err) {
			return apperr.Unavailable(err)
		}
		return errors.Wrap(err, "[UserRepo.Create] Exec")
	}
	return nil
}

func (r *Repo) GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*users.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, first_name, last_name, role, email_verified, created_at
		FROM users
		WHERE email = $1 AND tenant_id = $2
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email, tenantID))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, first_name, last_name, role, email_verified, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *Repo) scanOne(row pgx.Row) (*users.User, error) {
	var (
		u    users.User
		role string
	)
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &role, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		if store.Timeout(err) {
			return nil, apperr.Unavailable(err)
		}
		return nil, errors.Wrap(err, "[UserRepo] Scan")
	}
	u.Role = users.RoleType(role)
	return &u, nil
}
