// Package jobs runs the background maintenance schedule. The only job today
// is the reaper that bounds session-record and refresh-token growth.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/meridianhq/go-identity-server/sessions"
	"github.com/meridianhq/go-identity-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// Reaper periodically deletes expired session records and refresh tokens.
// Expired refresh tokens are also removed lazily at consumption time; the
// reaper keeps rows that are never presented again from accumulating.
type Reaper struct {
	scheduler gocron.Scheduler
	sessions  sessions.Recorder
	refresh   *refresh.Manager
	interval  time.Duration
	log       zerolog.Logger
	nowFunc   func() time.Time
}

type ReaperOption func(*Reaper)

func WithNowFunc(now func() time.Time) ReaperOption {
	return func(r *Reaper) {
		r.nowFunc = now
	}
}

func NewReaper(sessionRepo sessions.Recorder, refreshManager *refresh.Manager, interval time.Duration, log zerolog.Logger, options ...ReaperOption) (*Reaper, error) {
	if sessionRepo == nil {
		return nil, errors.New("[NewReaper] session recorder is required")
	}
	if refreshManager == nil {
		return nil, errors.New("[NewReaper] refresh manager is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "[NewReaper] gocron.NewScheduler")
	}

	r := &Reaper{
		scheduler: scheduler,
		sessions:  sessionRepo,
		refresh:   refreshManager,
		interval:  interval,
		log:       log,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(r)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.runSweep),
	); err != nil {
		return nil, errors.Wrap(err, "[NewReaper] scheduler.NewJob")
	}
	return r, nil
}

// Start begins the schedule in the background.
func (r *Reaper) Start() {
	r.log.Info().Dur("interval", r.interval).Msg("starting session reaper")
	r.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (r *Reaper) Stop() error {
	return r.scheduler.Shutdown()
}

func (r *Reaper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	r.Sweep(ctx)
}

// Sweep deletes everything past its expiry. Exposed for tests and for a
// one-shot sweep at startup.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := r.nowFunc()

	sessionCount, err := r.sessions.DeleteExpired(ctx, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("reaper: deleting expired session records")
	}

	tokenCount, err := r.refresh.DeleteExpired(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("reaper: deleting expired refresh tokens")
	}

	if sessionCount > 0 || tokenCount > 0 {
		r.log.Info().
			Int64("sessions", sessionCount).
			Int64("refresh_tokens", tokenCount).
			Msg("reaper swept expired rows")
	}
}
