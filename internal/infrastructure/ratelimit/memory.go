package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryLimiter keeps a per-identifier list of request timestamps. Stale
// timestamps are pruned lazily on each call, so an idle identifier costs
// nothing until it is seen again.
type memoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryLimiter creates an in-process sliding-window limiter.
func NewMemoryLimiter(cfg Config) Limiter {
	return newMemoryLimiter(cfg, time.Now)
}

func newMemoryLimiter(cfg Config, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		cfg:     cfg,
		now:     now,
		windows: make(map[string][]time.Time),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, identifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := l.prune(identifier, now)

	if len(window) >= l.cfg.Limit {
		return false, nil
	}

	l.windows[identifier] = append(window, now)
	return true, nil
}

func (l *memoryLimiter) Count(_ context.Context, identifier string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(identifier, l.now())), nil
}

// prune drops timestamps outside the window. Caller holds the lock.
func (l *memoryLimiter) prune(identifier string, now time.Time) []time.Time {
	cutoff := now.Add(-l.cfg.Window)
	window := l.windows[identifier]

	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(l.windows, identifier)
		return nil
	}

	l.windows[identifier] = kept
	return kept
}
