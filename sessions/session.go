// Package sessions records issued access tokens for audit and termination
// bookkeeping. Records are never consulted to validate a token; verification
// is purely cryptographic.
package sessions

import "time"

// Record is one audit entry per issued access token.
type Record struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
