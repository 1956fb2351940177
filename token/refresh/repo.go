package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh
// token. The client only ever sees the Token string; it has no embedded
// structure and is meaningful only as a lookup key.
type StoredRefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Repo manages server-side storage of refresh tokens.
//
// Consume must delete and return the row as a single atomic unit so that two
// concurrent consumers of the same token value observe exactly one success;
// the loser gets a not-found error. This is the concurrency-critical
// invariant of the whole refresh flow.
type Repo interface {
	Insert(ctx context.Context, token *StoredRefreshToken) error
	Consume(ctx context.Context, token string) (*StoredRefreshToken, error)
	DeleteAll(ctx context.Context, token string) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
