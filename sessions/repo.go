package sessions

import (
	"context"
	"time"
)

// Recorder persists session records. DeleteExpired exists for the background
// reaper; nothing else reads the records back inside the core.
type Recorder interface {
	Record(ctx context.Context, record *Record) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
