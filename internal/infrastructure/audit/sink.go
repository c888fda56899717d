package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/metrics"
)

// Config bounds the sink's queue and retry discipline.
type Config struct {
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Sink buffers security events on a bounded channel and delivers them to a
// journal from a single background worker. Submit never blocks: when the
// queue is full the event is counted as dropped instead. Delivery is
// at-least-once; a journal outage is retried with doubling backoff before
// an event is abandoned.
type Sink struct {
	journal Journal
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Registry

	queue     chan fraud.SecurityEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSink creates and starts the sink worker.
func NewSink(journal Journal, cfg Config, logger *slog.Logger, registry *metrics.Registry) *Sink {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1024
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sink{
		journal: journal,
		cfg:     cfg,
		logger:  logger,
		metrics: registry,
		queue:   make(chan fraud.SecurityEvent, cfg.QueueSize),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// Submit enqueues an event without blocking the caller. Events offered after
// Close, or while the queue is saturated, are dropped and counted.
func (s *Sink) Submit(event fraud.SecurityEvent) {
	select {
	case <-s.done:
		s.drop(event, "sink closed")
		return
	default:
	}

	select {
	case s.queue <- event:
		s.metrics.SetAuditQueueDepth(len(s.queue))
	default:
		s.drop(event, "queue saturated")
	}
}

// Close stops accepting events and drains the queue. It returns once every
// buffered event is delivered (or abandoned) or ctx expires.
func (s *Sink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) worker() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.queue:
			s.metrics.SetAuditQueueDepth(len(s.queue))
			s.deliver(event)
		case <-s.done:
			// Drain whatever Submit enqueued before the close signal.
			for {
				select {
				case event := <-s.queue:
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) deliver(event fraud.SecurityEvent) {
	backoff := s.cfg.RetryBackoff

	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.journal.Append(ctx, event)
		cancel()

		if err == nil {
			return
		}

		if attempt >= s.cfg.MaxRetries {
			s.metrics.RecordAuditDropped(context.Background())
			s.logger.Error("audit event abandoned after retries",
				"event_id", event.ID, "event_type", event.EventType,
				"attempts", attempt+1, "error", err)
			return
		}

		s.logger.Warn("audit journal append failed, retrying",
			"event_id", event.ID, "attempt", attempt+1, "error", err)
		time.Sleep(backoff)
		backoff *= 2
	}
}

func (s *Sink) drop(event fraud.SecurityEvent, cause string) {
	s.metrics.RecordAuditDropped(context.Background())
	s.logger.Warn("audit event dropped",
		"event_id", event.ID, "event_type", event.EventType, "cause", cause)
}
