package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// InMemoryRateLimiter is a sliding-window request limiter. The API surface
// is keyed by client IP; the attendance ledger mutations get a second,
// tighter per-user budget (a member tapping the check-in kiosk repeatedly
// should not hammer the ledger transaction path).
type InMemoryRateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	l := &InMemoryRateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go l.sweep()
	return l
}

// Allow records an attempt for key and reports whether it stays within the
// window budget.
func (l *InMemoryRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	kept := l.prune(key, now)
	if len(kept) >= l.limit {
		l.seen[key] = kept
		return false
	}
	l.seen[key] = append(kept, now)
	return true
}

// prune drops attempts older than the window in place. Caller holds the lock.
func (l *InMemoryRateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.seen[key][:0]
	for _, t := range l.seen[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// sweep periodically evicts keys with no attempts left in the window so
// one-off callers do not accumulate forever.
func (l *InMemoryRateLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for key := range l.seen {
			if kept := l.prune(key, now); len(kept) == 0 {
				delete(l.seen, key)
			} else {
				l.seen[key] = kept
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit limits by client IP across the whole API.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimitPerUser limits by authenticated user ID. Applied after
// AuthRequired on check-in/check-out, the hottest write path.
func RateLimitPerUser(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(fmt.Sprintf("user:%d", GetUserID(c))) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
