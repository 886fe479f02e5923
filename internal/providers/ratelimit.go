package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter admits at most requestsPerMinute chat calls per minute across
// every grading goroutine sharing one client. A 429 with Retry-After pauses
// all callers until the server's deadline passes.
type RateLimiter struct {
	mu sync.Mutex

	limit    float64 // bucket capacity, also tokens per minute
	perSec   float64
	tokens   float64
	lastFill time.Time

	pausedUntil time.Time
	last429     time.Time

	consumed int64
	waited   time.Duration

	now func() time.Time
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	PausedUntil     time.Time     `json:"paused_until,omitempty"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	Last429Time     time.Time     `json:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter; non-positive values mean 60 per minute.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	l := &RateLimiter{
		limit:  float64(requestsPerMinute),
		perSec: float64(requestsPerMinute) / 60,
		now:    time.Now,
	}
	l.tokens = l.limit
	l.lastFill = l.now()
	return l
}

// Wait blocks until a call may proceed or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		d, ok := l.reserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			l.mu.Lock()
			l.waited += d
			l.mu.Unlock()
		}
	}
}

// TryConsume takes a token without blocking and reports whether it did.
func (l *RateLimiter) TryConsume() bool {
	_, ok := l.reserve()
	return ok
}

// reserve takes a token if one is available, otherwise it returns how long
// to wait before trying again.
func (l *RateLimiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Before(l.pausedUntil) {
		return l.pausedUntil.Sub(now), false
	}
	l.fill(now)
	if l.tokens >= 1 {
		l.tokens--
		l.consumed++
		return 0, true
	}
	return l.untilToken(), false
}

// Record429 notes a rate-limit response. A positive retryAfter empties the
// bucket and holds every caller until it elapses.
func (l *RateLimiter) Record429(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.last429 = now
	if retryAfter > 0 {
		l.tokens = 0
		l.lastFill = now
		if until := now.Add(retryAfter); until.After(l.pausedUntil) {
			l.pausedUntil = until
		}
	}
}

// Status returns current limiter status.
func (l *RateLimiter) Status() RateLimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.fill(now)
	s := RateLimiterStatus{
		TokensAvailable: int(l.tokens),
		TokensLimit:     int(l.limit),
		TotalConsumed:   l.consumed,
		TotalWaited:     l.waited,
		Last429Time:     l.last429,
	}
	if now.Before(l.pausedUntil) {
		s.PausedUntil = l.pausedUntil
	}
	return s
}

// fill must be called with mu held.
func (l *RateLimiter) fill(now time.Time) {
	if elapsed := now.Sub(l.lastFill).Seconds(); elapsed > 0 {
		l.tokens = min(l.limit, l.tokens+elapsed*l.perSec)
	}
	l.lastFill = now
}

// untilToken must be called with mu held.
func (l *RateLimiter) untilToken() time.Duration {
	return time.Duration((1 - l.tokens) / l.perSec * float64(time.Second))
}
