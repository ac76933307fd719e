package credential

import (
	"context"
	"errors"
)

// Store holds at most one Entry per session. Put replaces the whole entry
// atomically; a concurrent Get sees either the old entry or the new one,
// never a mixture.
// Implementations: in-memory (internal/adapter/outbound/memory).
type Store interface {
	// Put stores the entry for the session, overwriting any existing one.
	Put(ctx context.Context, sessionID string, entry *Entry) error

	// Get retrieves the session's entry.
	// Returns ErrNoSession if no entry exists.
	Get(ctx context.Context, sessionID string) (*Entry, error)

	// Clear removes the session's entry. Clearing an absent session is a no-op.
	Clear(ctx context.Context, sessionID string) error
}

// ErrNoSession is returned when no credential entry exists for a session.
// It denotes the normal anonymous state, not a failure.
var ErrNoSession = errors.New("no credential for session")
