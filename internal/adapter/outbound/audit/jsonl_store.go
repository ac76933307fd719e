// Package audit provides audit persistence in JSON Lines format, writing to
// stdout or an append-only file per configuration.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/doc-gate/docgate/internal/domain/audit"
)

// JSONLStore implements audit.Store by appending one JSON object per line.
type JSONLStore struct {
	mu     sync.Mutex
	w      *bufio.Writer
	file   *os.File // nil when writing to stdout
	closed bool
}

// NewStore creates a store for the given output spec: "stdout" or
// "file://<absolute path>". The file is opened append-only and created if
// missing.
func NewStore(output string) (*JSONLStore, error) {
	if output == "" || output == "stdout" {
		return &JSONLStore{w: bufio.NewWriter(os.Stdout)}, nil
	}

	path, ok := strings.CutPrefix(output, "file://")
	if !ok {
		return nil, fmt.Errorf("invalid audit output %q: want \"stdout\" or \"file://<path>\"", output)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &JSONLStore{w: bufio.NewWriter(f), file: f}, nil
}

// Write appends a batch of records, one JSON line each, and flushes.
func (s *JSONLStore) Write(ctx context.Context, records []audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("audit store is closed")
	}

	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal audit record: %w", err)
		}
		if _, err := s.w.Write(line); err != nil {
			return fmt.Errorf("write audit record: %w", err)
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write audit record: %w", err)
		}
	}
	return s.w.Flush()
}

// Close flushes buffered records and closes the underlying file, if any.
// Safe to call multiple times.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

// Compile-time interface verification.
var _ audit.Store = (*JSONLStore)(nil)
