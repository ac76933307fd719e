package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/doc-gate/docgate/internal/domain/audit"
)

// memAuditStore collects written records for assertions.
type memAuditStore struct {
	mu      sync.Mutex
	records []audit.Record
}

func (m *memAuditStore) Write(_ context.Context, records []audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memAuditStore) Close() error { return nil }

func (m *memAuditStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestAuditService_FlushesOnStop(t *testing.T) {
	t.Parallel()

	store := &memAuditStore{}
	svc := NewAuditService(store, nil, WithFlushInterval(time.Hour))
	svc.Start(context.Background())

	for i := 0; i < 5; i++ {
		svc.Record(audit.Record{EventType: audit.EventTypeLogin, Username: "ada"})
	}
	svc.Stop()

	if got := store.count(); got != 5 {
		t.Errorf("records written = %d, want 5", got)
	}
}

func TestAuditService_FlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	store := &memAuditStore{}
	svc := NewAuditService(store, nil, WithBatchSize(2), WithFlushInterval(time.Hour))
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Record(audit.Record{EventType: audit.EventTypeLogin})
	svc.Record(audit.Record{EventType: audit.EventTypeLogout})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.count() >= 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("records written = %d, want 2 before Stop", store.count())
}

func TestAuditService_DropsOnBackpressure(t *testing.T) {
	t.Parallel()

	store := &memAuditStore{}
	// Worker never started: the channel fills and further records drop.
	svc := NewAuditService(store, nil, WithChannelSize(2))

	for i := 0; i < 5; i++ {
		svc.Record(audit.Record{EventType: audit.EventTypeLogin})
	}

	if got := svc.Drops(); got != 3 {
		t.Errorf("Drops() = %d, want 3", got)
	}
	if depth := svc.ChannelDepth(); depth != 2 {
		t.Errorf("ChannelDepth() = %d, want 2", depth)
	}
}

func TestAuditService_TimestampsRecords(t *testing.T) {
	t.Parallel()

	store := &memAuditStore{}
	svc := NewAuditService(store, nil)
	svc.Start(context.Background())

	svc.Record(audit.Record{EventType: audit.EventTypeLogin})
	svc.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 1 {
		t.Fatalf("records written = %d, want 1", len(store.records))
	}
	if store.records[0].Timestamp.IsZero() {
		t.Error("record timestamp not set")
	}
}

func TestSessionFingerprint(t *testing.T) {
	t.Parallel()

	fp := SessionFingerprint("sess-1")
	if fp == "" || fp == "sess-1" {
		t.Errorf("SessionFingerprint() = %q, want a non-empty digest", fp)
	}
	if SessionFingerprint("sess-1") != fp {
		t.Error("SessionFingerprint() not deterministic")
	}
	if SessionFingerprint("sess-2") == fp {
		t.Error("distinct sessions share a fingerprint")
	}
	if SessionFingerprint("") != "" {
		t.Error(`SessionFingerprint("") should be empty`)
	}
}
