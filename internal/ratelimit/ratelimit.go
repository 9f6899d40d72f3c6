// Package ratelimit implements a fixed-window message counter keyed by client
// identity. The original site enforced this limit in the browser; here it is
// server-side state keyed by the caller's IP, so it survives page reloads and
// cannot be cleared by the client.
package ratelimit

import (
	"sync"
	"time"
)

// record tracks admitted messages for one client within the current window.
type record struct {
	count       int
	windowStart time.Time
}

// Limiter is a fixed-window rate limiter. It is safe for concurrent use; the
// per-key read-modify-write is guarded by a mutex since requests from the same
// client can land on different goroutines.
type Limiter struct {
	mu          sync.Mutex
	records     map[string]*record
	maxMessages int
	window      time.Duration
	now         func() time.Time // injectable for tests
}

// NewLimiter creates a Limiter admitting at most maxMessages per window.
func NewLimiter(maxMessages int, window time.Duration) *Limiter {
	return &Limiter{
		records:     make(map[string]*record),
		maxMessages: maxMessages,
		window:      window,
		now:         time.Now,
	}
}

// Admit reports whether the client identified by key may issue another query.
// When denied, the returned duration is the time remaining until the window
// resets. Expired windows are reset lazily on access; records are never
// explicitly deleted.
func (l *Limiter) Admit(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]
	if !ok || now.Sub(rec.windowStart) > l.window {
		l.records[key] = &record{count: 1, windowStart: now}
		return true, 0
	}

	if rec.count >= l.maxMessages {
		return false, l.window - now.Sub(rec.windowStart)
	}

	rec.count++
	return true, 0
}

// Remaining returns how many messages the client may still send in the
// current window. A client with no record (or an expired window) has the full
// allowance.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || l.now().Sub(rec.windowStart) > l.window {
		return l.maxMessages
	}
	if rec.count >= l.maxMessages {
		return 0
	}
	return l.maxMessages - rec.count
}

// TimeUntilReset returns how long until the client's window resets. Zero means
// the next message starts a fresh window.
func (l *Limiter) TimeUntilReset(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok {
		return 0
	}
	elapsed := l.now().Sub(rec.windowStart)
	if elapsed > l.window {
		return 0
	}
	return l.window - elapsed
}

// Limit returns the configured per-window message allowance.
func (l *Limiter) Limit() int {
	return l.maxMessages
}
