// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/doc-gate/docgate/internal/domain/credential"
)

// DefaultCleanupInterval is how often the idle-entry sweep runs.
const DefaultCleanupInterval = 1 * time.Minute

// CredentialStore implements credential.Store with an in-memory map.
// Thread-safe for concurrent access; Put replaces the whole entry under the
// write lock so readers never observe a partially-updated entry. A background
// cleanup goroutine evicts entries idle past the configured timeout.
type CredentialStore struct {
	entries         map[string]*credential.Entry
	mu              sync.RWMutex
	idleTimeout     time.Duration
	cleanupInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once // Prevent double-close panic on Stop()
}

// NewCredentialStore creates an in-memory credential store. Entries not read
// for idleTimeout are evicted by the background sweep; an idleTimeout of zero
// disables eviction.
func NewCredentialStore(idleTimeout time.Duration) *CredentialStore {
	return &CredentialStore{
		entries:         make(map[string]*credential.Entry),
		idleTimeout:     idleTimeout,
		cleanupInterval: DefaultCleanupInterval,
		stopChan:        make(chan struct{}),
	}
}

// StartCleanup starts the background eviction goroutine.
// Call Stop() to stop it gracefully.
func (s *CredentialStore) StartCleanup(ctx context.Context) {
	if s.idleTimeout <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
}

// cleanup removes all entries idle past the timeout.
func (s *CredentialStore) cleanup() {
	cutoff := time.Now().UTC().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned := 0
	for id, entry := range s.entries {
		if entry.LastAccess.Before(cutoff) {
			delete(s.entries, id)
			cleaned++
		}
	}

	if cleaned > 0 {
		slog.Debug("evicted idle sessions", "count", cleaned)
	}
}

// Stop stops the background cleanup goroutine and waits for it to exit.
// Safe to call multiple times.
func (s *CredentialStore) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// Put stores the entry for the session, overwriting any existing one.
func (s *CredentialStore) Put(ctx context.Context, sessionID string, entry *credential.Entry) error {
	// Store a copy to prevent external mutation
	entryCopy := copyEntry(entry)
	entryCopy.LastAccess = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entryCopy
	return nil
}

// Get retrieves the session's entry.
// Returns credential.ErrNoSession if no entry exists.
func (s *CredentialStore) Get(ctx context.Context, sessionID string) (*credential.Entry, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	entry, ok := s.entries[sessionID]
	if ok {
		entry.LastAccess = now
		entry = copyEntry(entry)
	}
	s.mu.Unlock()

	if !ok {
		return nil, credential.ErrNoSession
	}
	return entry, nil
}

// Clear removes the session's entry. Clearing an absent session is a no-op.
func (s *CredentialStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Size returns the number of entries currently stored.
// Used by health checks and the active-sessions gauge.
func (s *CredentialStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// copyEntry creates a deep copy of an entry.
func copyEntry(entry *credential.Entry) *credential.Entry {
	entryCopy := &credential.Entry{
		Credential: entry.Credential,
		CreatedAt:  entry.CreatedAt,
		LastAccess: entry.LastAccess,
	}
	if entry.Profile != nil {
		entryCopy.Profile = make([]byte, len(entry.Profile))
		copy(entryCopy.Profile, entry.Profile)
	}
	return entryCopy
}

// Compile-time interface verification.
var _ credential.Store = (*CredentialStore)(nil)
