package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/doc-gate/docgate/internal/domain/audit"
)

// AuditService provides async audit logging with a buffered channel and
// background worker, so login and proxy paths never block on the audit sink.
type AuditService struct {
	store         audit.Store
	auditChan     chan audit.Record
	done          chan struct{}
	wg            sync.WaitGroup
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	channelSize   int
	dropCount     atomic.Int64
	stopOnce      sync.Once
}

// AuditOption configures AuditService.
type AuditOption func(*AuditService)

// WithBatchSize sets the number of records to batch before writing.
func WithBatchSize(size int) AuditOption {
	return func(s *AuditService) {
		s.batchSize = size
	}
}

// WithFlushInterval sets the interval to flush pending records.
func WithFlushInterval(interval time.Duration) AuditOption {
	return func(s *AuditService) {
		s.flushInterval = interval
	}
}

// WithChannelSize sets the size of the audit channel buffer.
func WithChannelSize(size int) AuditOption {
	return func(s *AuditService) {
		s.auditChan = make(chan audit.Record, size)
		s.channelSize = size
	}
}

// NewAuditService creates an AuditService with the given store and options.
// Call Start to launch the background worker and Stop to drain and shut down.
func NewAuditService(store audit.Store, logger *slog.Logger, opts ...AuditOption) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuditService{
		store:         store,
		done:          make(chan struct{}),
		logger:        logger,
		batchSize:     32,
		flushInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditChan == nil {
		s.auditChan = make(chan audit.Record, 1024)
		s.channelSize = 1024
	}
	return s
}

// Start launches the background worker.
func (s *AuditService) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// run drains the channel, batching records and flushing on size or interval.
func (s *AuditService) run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]audit.Record, 0, s.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.store.Write(context.Background(), batch); err != nil {
			s.logger.Error("audit write failed", "error", err, "records", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-s.done:
			// Drain whatever is already queued, then flush and exit.
			for {
				select {
				case rec := <-s.auditChan:
					batch = append(batch, rec)
					if len(batch) >= s.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case rec := <-s.auditChan:
			batch = append(batch, rec)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Record enqueues an audit record without blocking. When the channel is full
// the record is dropped and the drop counter incremented.
func (s *AuditService) Record(rec audit.Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	select {
	case s.auditChan <- rec:
	default:
		dropped := s.dropCount.Add(1)
		if dropped == 1 || dropped%1000 == 0 {
			s.logger.Warn("audit records dropped due to backpressure", "total_dropped", dropped)
		}
	}
}

// Stop signals the worker to drain and waits for it to exit.
// Safe to call multiple times.
func (s *AuditService) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// ChannelDepth returns the number of queued records.
func (s *AuditService) ChannelDepth() int {
	return len(s.auditChan)
}

// ChannelCapacity returns the channel buffer size.
func (s *AuditService) ChannelCapacity() int {
	return s.channelSize
}

// Drops returns the total number of records dropped due to backpressure.
func (s *AuditService) Drops() int64 {
	return s.dropCount.Load()
}

// SessionFingerprint hashes a session ID for audit correlation. The raw
// cookie value never appears in audit output.
func SessionFingerprint(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(sessionID))
}
