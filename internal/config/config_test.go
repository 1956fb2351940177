package config_test

import (
	"testing"
	"time"

	"github.com/meridianhq/go-identity-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, ":8080", cfg.Addr())
}

func TestLoadMissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "  ")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("PORT", ":9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, ":9090", cfg.Addr())
}
