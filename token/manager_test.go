package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/token"
	"github.com/meridianhq/go-identity-server/users"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func testUser() *users.User {
	return &users.User{
		ID:       "user-1",
		Email:    "john.doe@example.com",
		TenantID: "tenant-1",
		Role:     users.RoleUser,
	}
}

func testMemberships() []directory.Membership {
	return []directory.Membership{
		{OrganizationID: "org-1", OrganizationName: "Engineering", Role: "ADMIN"},
		{OrganizationID: "org-2", OrganizationName: "Support", Role: "USER"},
	}
}

func TestRoundTrip(t *testing.T) {
	m := token.New(token.NewHMACSigner(testSecret))

	signed, issued, err := m.IssueAccessToken(testUser(), testMemberships())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "john.doe@example.com", claims.Email)
	require.Equal(t, "USER", claims.Role)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Len(t, claims.Organizations, 2)
	require.Equal(t, "Engineering", claims.Organizations[0].Name)
	require.Equal(t, "ADMIN", claims.Organizations[0].Role)
	require.Equal(t, issued.ID, claims.ID)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := token.New(token.NewHMACSigner(testSecret),
		token.WithAccessTokenExpiry(15*time.Minute),
		token.WithNowFunc(func() time.Time { return issuedAt }),
	)

	signed, _, err := m.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	verifier := token.New(token.NewHMACSigner(testSecret),
		token.WithNowFunc(func() time.Time { return issuedAt.Add(16 * time.Minute) }),
	)
	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := token.New(token.NewHMACSigner("other-secret"))
	signed, _, err := issuer.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	verifier := token.New(token.NewHMACSigner(testSecret))
	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyRejectsAlgorithmConfusion(t *testing.T) {
	// A token claiming "alg": "none" must never verify, whatever its payload.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	verifier := token.New(token.NewHMACSigner(testSecret))
	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	verifier := token.New(token.NewHMACSigner(testSecret))

	_, err := verifier.Verify("not-a-jwt")
	require.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = verifier.Verify("")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestEmptyMembershipsEncodeAsEmptyList(t *testing.T) {
	m := token.New(token.NewHMACSigner(testSecret))

	signed, _, err := m.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	require.NotNil(t, claims.Organizations)
	require.Empty(t, claims.Organizations)
}
