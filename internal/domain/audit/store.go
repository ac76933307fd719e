package audit

import "context"

// Store persists audit records.
// Implementations: JSON Lines to stdout or an append-only file
// (internal/adapter/outbound/audit).
type Store interface {
	// Write persists a batch of records.
	Write(ctx context.Context, records []Record) error

	// Close flushes and releases the underlying sink.
	Close() error
}
