package ratelimit

import (
	"context"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by an opaque identifier
// (user ID, IP address, API key). Implementations are safe for concurrent
// callers.
type Limiter interface {
	// Allow records one request for the identifier and reports whether it
	// fits within the window. A denied request is not recorded.
	Allow(ctx context.Context, identifier string) (bool, error)
	// Count returns the number of requests currently inside the window.
	Count(ctx context.Context, identifier string) (int, error)
}

// Config bounds one limiter: at most Limit requests per Window.
type Config struct {
	Limit  int
	Window time.Duration
}
