package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter implements a simple per-client fixed-window limiter. No pack
// repo imports a rate-limiting library, and a fixed-window counter is a
// handful of lines — not enough surface to justify pulling in a dependency
// for it, so this stays on the standard library.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	counts map[string]*windowCount
}

type windowCount struct {
	resetAt time.Time
	count   int
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	return &rateLimiter{window: window, max: max, counts: map[string]*windowCount{}}
}

func (r *rateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	wc, ok := r.counts[key]
	if !ok || now.After(wc.resetAt) {
		r.counts[key] = &windowCount{resetAt: now.Add(r.window), count: 1}
		return true
	}
	if wc.count >= r.max {
		return false
	}
	wc.count++
	return true
}

// RateLimitMiddleware enforces RATE_LIMIT_WINDOW_MS/RATE_LIMIT_MAX_REQUESTS
// per §6 when both are configured (windowMS > 0 and max > 0); otherwise it
// is a no-op pass-through.
func RateLimitMiddleware(windowMS, max int) gin.HandlerFunc {
	if windowMS <= 0 || max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(time.Duration(windowMS)*time.Millisecond, max)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
