// Package token issues and verifies the signed access tokens that carry
// identity and membership claims. Verification is purely cryptographic; no
// store is consulted.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/users"
	"github.com/pkg/errors"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

const defaultAccessTokenExpiry = 15 * time.Minute

// Manager creates and verifies access tokens with a single server-held
// signer.
type Manager struct {
	signer            Signer
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:            signer,
		accessTokenExpiry: defaultAccessTokenExpiry,
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// AccessTokenExpiry returns the configured access token lifetime.
func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// IssueAccessToken signs a token embedding the user's identity and current
// organization memberships. The returned claims include the expiry the
// session recorder needs.
func (m *Manager) IssueAccessToken(user *users.User, memberships []directory.Membership) (string, *Claims, error) {
	orgs := make([]OrganizationClaim, 0, len(memberships))
	for _, ms := range memberships {
		orgs = append(orgs, OrganizationClaim{
			ID:   ms.OrganizationID,
			Role: ms.Role,
			Name: ms.OrganizationName,
		})
	}

	now := m.nowFunc()
	claims := &Claims{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          string(user.Role),
		TenantID:      user.TenantID,
		Organizations: orgs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Manager.IssueAccessToken] Sign")
	}
	return signed, claims, nil
}

// Verify parses and validates a raw token string. Tokens signed with a
// different secret or algorithm are rejected; expiry is checked against the
// manager's clock.
func (m *Manager) Verify(rawToken string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(ErrTokenExpired, err.Error())
		}
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
