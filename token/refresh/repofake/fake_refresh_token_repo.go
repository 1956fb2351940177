// Package repofake provides an in-memory refresh token repository. Consume
// holds the write lock across lookup and delete, mirroring the atomicity of
// the Postgres DELETE .. RETURNING.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	lock   sync.Mutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (r *FakeRefreshTokenRepo) Insert(_ context.Context, token *refresh.StoredRefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *FakeRefreshTokenRepo) Consume(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, apperr.NotFound("refresh token not found")
	}
	delete(r.tokens, token)
	cp := *stored
	return &cp, nil
}

func (r *FakeRefreshTokenRepo) DeleteAll(_ context.Context, token string) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return 0, nil
	}
	delete(r.tokens, token)
	return 1, nil
}

func (r *FakeRefreshTokenRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var deleted int64
	for value, stored := range r.tokens {
		if stored.ExpiresAt.Before(cutoff) {
			delete(r.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}

// Count reports the number of live tokens.
func (r *FakeRefreshTokenRepo) Count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.tokens)
}
