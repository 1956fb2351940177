package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridianhq/go-identity-server/internal/jobs"
	"github.com/meridianhq/go-identity-server/sessions"
	sessionfake "github.com/meridianhq/go-identity-server/sessions/repofake"
	"github.com/meridianhq/go-identity-server/token/refresh"
	refreshfake "github.com/meridianhq/go-identity-server/token/refresh/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSweepDeletesOnlyExpiredRows(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	sessionRepo := sessionfake.NewFakeSessionRepo()
	refreshRepo := refreshfake.NewFakeRefreshTokenRepo()
	refreshManager := refresh.NewManager(refreshRepo,
		refresh.WithExpiry(time.Hour),
		refresh.WithNowFunc(func() time.Time { return clock }),
	)
	ctx := context.Background()

	require.NoError(t, sessionRepo.Record(ctx, &sessions.Record{
		ID: "s-expired", UserID: "user-1", Token: "t1", ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, sessionRepo.Record(ctx, &sessions.Record{
		ID: "s-live", UserID: "user-1", Token: "t2", ExpiresAt: now.Add(time.Hour),
	}))

	clock = now.Add(-2 * time.Hour)
	_, err := refreshManager.Issue(ctx, "user-1") // expires now-1h
	require.NoError(t, err)
	clock = now
	live, err := refreshManager.Issue(ctx, "user-1")
	require.NoError(t, err)

	reaper, err := jobs.NewReaper(sessionRepo, refreshManager, time.Minute, zerolog.Nop(),
		jobs.WithNowFunc(func() time.Time { return clock }),
	)
	require.NoError(t, err)

	reaper.Sweep(ctx)

	records := sessionRepo.Records()
	require.Len(t, records, 1)
	require.Equal(t, "s-live", records[0].ID)

	userID, err := refreshManager.Consume(ctx, live)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.Equal(t, 0, refreshRepo.Count())
}
