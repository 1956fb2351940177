// Package repopg implements the refresh token repository on Postgres.
//
// Consume is a single DELETE .. RETURNING statement, so concurrent
// consumption of the same value resolves to exactly one winner inside the
// database; no read-then-write window exists.
package repopg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/internal/store"
	"github.com/meridianhq/go-identity-server/token/refresh"
	"github.com/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ refresh.Repo = (*Repo)(nil)

type Repo struct {
	db DB
}

func New(db DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, token *refresh.StoredRefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		if store.Timeout(err) {
			return apperr.Unavailable(err)
		}
		return errors.Wrap(err, "[RefreshTokenRepo.Insert] Exec")
	}
	return nil
}

func (r *Repo) Consume(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	query := `DELETE FROM refresh_tokens WHERE token = $1 RETURNING user_id, expires_at`
	stored := refresh.StoredRefreshToken{Token: token}
	err := r.db.QueryRow(ctx, query, token).Scan(&stored.UserID, &stored.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("refresh token not found")
		}
		if store.Timeout(err) {
			return nil, apperr.Unavailable(err)
		}
		return nil, errors.Wrap(err, "[RefreshTokenRepo.Consume] Scan")
	}
	return &stored, nil
}

func (r *Repo) DeleteAll(ctx context.Context, token string) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	tag, err := r.db.Exec(ctx, query, token)
	if err != nil {
		if store.Timeout(err) {
			return 0, apperr.Unavailable(err)
		}
		return 0, errors.Wrap(err, "[RefreshTokenRepo.DeleteAll] Exec")
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		if store.Timeout(err) {
			return 0, apperr.Unavailable(err)
		}
		return 0, errors.Wrap(err, "[RefreshTokenRepo.DeleteExpired] Exec")
	}
	return tag.RowsAffected(), nil
}
