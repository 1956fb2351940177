// Package repofake provides an in-memory session recorder for tests and
// development mode.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/meridianhq/go-identity-server/sessions"
)

var _ sessions.Recorder = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	records []sessions.Record
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Record(_ context.Context, record *sessions.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *FakeSessionRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var (
		kept    []sessions.Record
		deleted int64
	)
	for _, rec := range r.records {
		if rec.ExpiresAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

// Records returns a snapshot of everything recorded so far.
func (r *FakeSessionRepo) Records() []sessions.Record {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]sessions.Record, len(r.records))
	copy(out, r.records)
	return out
}
