// Package auth composes the credential store, password hasher, directory
// store, token signer, refresh token store and session recorder into the
// register, login, refresh and logout use cases. It is the only package with
// business logic and error semantics.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/sessions"
	"github.com/meridianhq/go-identity-server/token"
	"github.com/meridianhq/go-identity-server/token/refresh"
	"github.com/meridianhq/go-identity-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const minPasswordLength = 8

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Users     users.Repo        // Credential store
	Directory directory.Repo    // Read-only membership lookups
	Sessions  sessions.Recorder // Audit trail of issued access tokens
}

// Service orchestrates the authentication and session lifecycle.
type Service struct {
	repos   Repos
	hasher  users.Hasher
	tokens  *token.Manager
	refresh *refresh.Manager
	log     zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for internal diagnostics.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(
	repos Repos,
	hasher users.Hasher,
	tokenManager *token.Manager,
	refreshManager *refresh.Manager,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Directory == nil {
		return nil, errors.New("[NewService] Directory repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions recorder is required")
	}
	if tokenManager == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if refreshManager == nil {
		return nil, errors.New("[NewService] refresh manager is required")
	}

	s := &Service{
		repos:   repos,
		hasher:  hasher,
		tokens:  tokenManager,
		refresh: refreshManager,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// RegisterParams carries the register inputs. TenantID may be empty for the
// default tenant.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	TenantID  string
}

// Result is the outcome of register and login.
type Result struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// TokenPair is the outcome of refresh; the user object is not re-fetched.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a user and issues its first token pair. The same email
// may register in two different tenants; within a tenant the store's
// uniqueness constraint picks exactly one winner under concurrency.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Result, error) {
	email := strings.TrimSpace(params.Email)
	if email == "" || params.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if len(params.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least 8 characters long")
	}

	_, err := s.repos.Users.GetByEmailAndTenant(ctx, email, params.TenantID)
	switch {
	case err == nil:
		return nil, apperr.Conflict("user already exists")
	case !apperr.IsKind(err, apperr.KindNotFound):
		return nil, errors.Wrap(err, "[Register] GetByEmailAndTenant")
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] Hash")
	}

	user := &users.User{
		ID:            uuid.New().String(),
		Email:         email,
		TenantID:      params.TenantID,
		PasswordHash:  passwordHash,
		FirstName:     strings.TrimSpace(params.FirstName),
		LastName:      strings.TrimSpace(params.LastName),
		Role:          users.RoleUser,
		EmailVerified: false,
		CreatedAt:     s.nowTime().UTC(),
	}

	// The unique constraint is the arbiter for duplicate races; the lookup
	// above only provides the fast path.
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[Register] Create")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] issueTokens")
	}

	return &Result{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login verifies credentials and issues a fresh token pair. Both failure
// branches surface the same generic message so callers cannot enumerate
// users; the internal reason is kept in diagnostics only.
func (s *Service) Login(ctx context.Context, email, password, tenantID string) (*Result, error) {
	user, err := s.repos.Users.GetByEmailAndTenant(ctx, strings.TrimSpace(email), tenantID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			s.log.Debug().Str("tenant_id", tenantID).Msg("login failed: unknown user")
			return nil, apperr.Authentication("invalid credentials")
		}
		return nil, errors.Wrap(err, "[Login] GetByEmailAndTenant")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debug().Str("user_id", user.ID).Msg("login failed: password mismatch")
		return nil, apperr.Authentication("invalid credentials")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] issueTokens")
	}

	return &Result{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a refresh token for a new pair. Consumption is atomic:
// under concurrent calls with the same value exactly one succeeds. Claims
// are re-derived from the directory so rotated tokens reflect current
// membership state.
func (s *Service) Refresh(ctx context.Context, refreshTokenValue string) (*TokenPair, error) {
	userID, err := s.refresh.Consume(ctx, refreshTokenValue)
	if err != nil {
		if errors.Is(err, refresh.ErrInvalidOrExpired) {
			return nil, apperr.Authentication("invalid or expired refresh token")
		}
		return nil, errors.Wrap(err, "[Refresh] Consume")
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh] GetByID")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh] issueTokens")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes every refresh token matching the given value. Idempotent:
// revoking an unknown value succeeds. Already-issued access tokens stay
// valid until they expire on their own schedule.
func (s *Service) Logout(ctx context.Context, refreshTokenValue string) error {
	if err := s.refresh.RevokeAll(ctx, refreshTokenValue); err != nil {
		return errors.Wrap(err, "[Logout] RevokeAll")
	}
	return nil
}

// issueTokens signs an access token with the user's current memberships,
// durably stores a new refresh token and writes the session record. Nothing
// is returned to the caller until all three have succeeded; a failure in any
// step aborts the whole operation.
func (s *Service) issueTokens(ctx context.Context, user *users.User) (string, string, error) {
	memberships, err := s.repos.Directory.MembershipsForUser(ctx, user.ID)
	if err != nil {
		return "", "", errors.Wrap(err, "MembershipsForUser")
	}

	accessToken, claims, err := s.tokens.IssueAccessToken(user, memberships)
	if err != nil {
		return "", "", errors.Wrap(err, "IssueAccessToken")
	}

	refreshToken, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return "", "", errors.Wrap(err, "refresh.Issue")
	}

	if err := s.repos.Sessions.Record(ctx, &sessions.Record{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     accessToken,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: s.nowTime().UTC(),
	}); err != nil {
		return "", "", errors.Wrap(err, "Sessions.Record")
	}

	return accessToken, refreshToken, nil
}
