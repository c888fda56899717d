package audit

import (
	"context"
	"sync"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// Journal is the durable destination for security events. Append must be
// idempotent-tolerant: the sink retries, so a journal may see the same event
// more than once.
type Journal interface {
	Append(ctx context.Context, event fraud.SecurityEvent) error
}

// MemoryJournal holds events in memory. Used in tests and single-process
// deployments without redis.
type MemoryJournal struct {
	mu     sync.Mutex
	events []fraud.SecurityEvent
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, event fraud.SecurityEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (j *MemoryJournal) Events() []fraud.SecurityEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]fraud.SecurityEvent, len(j.events))
	copy(out, j.events)
	return out
}
