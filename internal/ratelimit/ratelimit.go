package ratelimit

import (
	"sync"
	"time"

	"grnews/internal/logger"
)

// Limiter enforces a daily request budget for the summarization API. When
// the budget is exhausted the pipeline falls back to direct mode instead of
// burning paid requests.
type Limiter struct {
	mu        sync.Mutex
	count     int
	max       int // 0 = unlimited
	window    time.Duration
	resetTime time.Time
}

// New creates a limiter allowing max requests per window. max <= 0 means
// unlimited.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:       max,
		window:    window,
		resetTime: time.Now().Add(window),
	}
}

// Allow reports whether another request fits in the budget and counts it.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.max > 0 && l.count >= l.max {
		logger.Warn("ratelimit: request budget exhausted", "used", l.count, "max", l.max)
		return false
	}

	l.count++
	return true
}

// Stats returns the used and maximum request counts for the current window.
func (l *Limiter) Stats() (used, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkReset()
	return l.count, l.max
}

func (l *Limiter) checkReset() {
	if time.Now().After(l.resetTime) {
		l.count = 0
		l.resetTime = time.Now().Add(l.window)
		logger.Info("ratelimit: budget window reset")
	}
}
