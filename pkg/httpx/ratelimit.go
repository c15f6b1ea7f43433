package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paperbark/journal/pkg/slogx"
)

// RateLimitConfig bounds request volume per client key.
type RateLimitConfig struct {
	// MaxRequests is the number of requests allowed per window.
	MaxRequests int
	// Window is the fixed counting window.
	Window time.Duration
}

// KeyExtractor derives the rate-limiting key from a request, typically the
// client IP.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP, honoring X-Forwarded-For and
// X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// sweepInterval bounds how often expired windows are evicted, keeping the
// key table from growing with every client the process has ever seen.
const sweepInterval = 5 * time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows. A client can
// burst up to 2x MaxRequests across a window boundary; that imprecision is
// accepted in exchange for constant-time bookkeeping.
//
// All state lives behind one mutex covering the read-check-increment
// sequence. The lock is never held across I/O.
type FixedWindowLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	max       int
	window    time.Duration
	lastSweep time.Time

	now func() time.Time // injectable for tests
}

// NewFixedWindowLimiter builds a limiter from cfg.
func NewFixedWindowLimiter(cfg RateLimitConfig) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows:   make(map[string]*window),
		max:       cfg.MaxRequests,
		window:    cfg.Window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow records one request for key and reports whether it is within budget.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeSweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	w.count++
	return w.count <= l.max
}

// RetryAfter reports how long the key must wait for its window to reset.
func (l *FixedWindowLimiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return 0
	}
	if d := w.resetAt.Sub(l.now()); d > 0 {
		return d
	}
	return 0
}

// maybeSweep evicts expired windows. Called with the lock held.
func (l *FixedWindowLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// RateLimitMiddleware rejects requests over budget with 429 before any
// identity resolution or handler work happens.
func RateLimitMiddleware(limiter *FixedWindowLimiter, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				// No key means no way to count; let it through rather than
				// collapsing all unidentifiable clients into one bucket.
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(key) {
				retryAfter := max(int(limiter.RetryAfter(key).Seconds()), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.max))
				w.Header().Set("X-RateLimit-Window", limiter.window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limited",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
