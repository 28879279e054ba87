// Package session keeps per-session purchase flags and the most recent
// original/optimized CV texts used by the compare endpoint.
package session

import (
	"context"
	"time"
)

// State is the session-scoped data the generation pipeline reads and
// writes. It belongs to exactly one caller's session.
type State struct {
	SessionID       string
	PaidAccess      bool
	CVBuilderAccess bool
	OriginalText    string
	OptimizedText   string
	UpdatedAt       time.Time
}

// Store persists session state. Get returns a zero-valued State for an
// unknown session rather than an error.
type Store interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, state State) error
}
