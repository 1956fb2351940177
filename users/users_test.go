package users_test

import (
	"testing"

	"github.com/meridianhq/go-identity-server/users"
	"github.com/stretchr/testify/require"
)

func TestHasherRoundTrip(t *testing.T) {
	hasher := users.NewHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, hasher.Verify("password123", hash))
	require.False(t, hasher.Verify("password124", hash))
}

func TestHasherSaltsEachHash(t *testing.T) {
	hasher := users.NewHasher(4)

	h1, err := hasher.Hash("password123")
	require.NoError(t, err)
	h2, err := hasher.Hash("password123")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestHasherRejectsOutOfRangeCost(t *testing.T) {
	hasher := users.NewHasher(99)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	require.True(t, hasher.Verify("password123", hash))
}

func TestFullName(t *testing.T) {
	u := &users.User{FirstName: "Bob", LastName: "Jones"}
	require.Equal(t, "Bob Jones", u.FullName())

	u = &users.User{FirstName: "Bob"}
	require.Equal(t, "Bob", u.FullName())

	u = &users.User{}
	require.Equal(t, "", u.FullName())
}
