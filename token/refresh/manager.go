// Package refresh implements issuance and single-use consumption of opaque
// refresh tokens.
package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/pkg/errors"
)

// ErrInvalidOrExpired covers every consumption failure: unknown value,
// already consumed, or past expiry. Callers must not be able to tell which.
var ErrInvalidOrExpired = errors.New("invalid or expired refresh token")

// tokenByteLength is the entropy of a token value: 40 random bytes hex
// encoded, 320 bits.
const tokenByteLength = 40

const defaultExpiry = 7 * 24 * time.Hour

// Manager handles refresh token creation, consumption and revocation.
type Manager struct {
	repo    Repo
	expiry  time.Duration
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.expiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(repo Repo, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		expiry:  defaultExpiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Issue generates a fresh token value from a cryptographically secure random
// source and persists it with its expiry. Multiple live tokens per user are
// allowed; each login or rotation gets its own.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	tokenBytes := make([]byte, tokenByteLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] rand.Read")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Insert(ctx, &StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		ExpiresAt: m.nowFunc().Add(m.expiry),
	}); err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] Insert")
	}
	return tokenStr, nil
}

// Consume atomically deletes the token and returns its owner. A missing row
// and an expired row surface as the same ErrInvalidOrExpired; expiry is
// checked lazily here, and the expired row is gone either way.
func (m *Manager) Consume(ctx context.Context, tokenValue string) (string, error) {
	stored, err := m.repo.Consume(ctx, tokenValue)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", ErrInvalidOrExpired
		}
		return "", errors.Wrap(err, "[Manager.Consume] Consume")
	}
	if stored.ExpiresAt.Before(m.nowFunc()) {
		return "", ErrInvalidOrExpired
	}
	return stored.UserID, nil
}

// RevokeAll deletes every row matching the token value. Idempotent: zero
// matches is a success.
func (m *Manager) RevokeAll(ctx context.Context, tokenValue string) error {
	if _, err := m.repo.DeleteAll(ctx, tokenValue); err != nil {
		return errors.Wrap(err, "[Manager.RevokeAll] DeleteAll")
	}
	return nil
}

// DeleteExpired purges tokens past their expiry. Used by the background
// reaper.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.nowFunc())
}
