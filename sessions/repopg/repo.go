// Package repopg implements the session recorder on Postgres.
package repopg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/internal/store"
	"github.com/meridianhq/go-identity-server/sessions"
	"github.com/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ sessions.Recorder = (*Repo)(nil)

type Repo struct {
	db DB
}

func New(db DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Record(ctx context.Context, record *sessions.Record) error {
	query := `INSERT INTO session_records (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, record.ID, record.UserID, record.Token, record.ExpiresAt, record.CreatedAt)
	if err != nil {
		if store.Timeout(err) {
			return apperr.Unavailable(err)
		}
		return errors.Wrap(err, "[SessionRepo.Record] Exec")
	}
	return nil
}

func (r *Repo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM session_records WHERE expires_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		if store.Timeout(err) {
			return 0, apperr.Unavailable(err)
		}
		return 0, errors.Wrap(err, "[SessionRepo.DeleteExpired] Exec")
	}
	return tag.RowsAffected(), nil
}
