package rest

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	domainerrors "github.com/payshield/risk-engine/internal/domain/errors"
)

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

func chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.InfoContext(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

func recoverPanics(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						"error", recovered,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, domainerrors.NewInternalError("an internal error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// clientLimiters holds one token bucket per client IP. Buckets are created
// lazily and the map is reset wholesale when it grows past maxClients, which
// bounds memory without per-entry expiry bookkeeping.
type clientLimiters struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	limit      rate.Limit
	burst      int
	maxClients int
}

func newClientLimiters(requestsPerSecond, burst int) *clientLimiters {
	return &clientLimiters{
		limiters:   make(map[string]*rate.Limiter),
		limit:      rate.Limit(requestsPerSecond),
		burst:      burst,
		maxClients: 10000,
	}
}

func (c *clientLimiters) allow(clientKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.limiters) >= c.maxClients {
		c.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := c.limiters[clientKey]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[clientKey] = limiter
	}
	return limiter.Allow()
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiting applies a per-client token bucket to API endpoints. Health
// and metrics probes are exempt so orchestration never sees 429s.
func rateLimiting(limiters *clientLimiters) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}
			if !limiters.allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				writeError(w, domainerrors.NewRateLimitError("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
