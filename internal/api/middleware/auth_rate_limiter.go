package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultCleanupTTL      = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AuthRateLimiter throttles credential endpoints (login, register, PIN
// verification) per client IP and route. Idle entries expire after the TTL.
type AuthRateLimiter struct {
	limiters   map[string]*limiterEntry
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	cleanupTTL time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewAuthRateLimiter allows requestsPerMinute per IP and route, with a burst
// of the same size. Values below one are clamped to one.
func NewAuthRateLimiter(requestsPerMinute int) *AuthRateLimiter {
	return NewAuthRateLimiterWithTTL(requestsPerMinute, defaultCleanupTTL)
}

func NewAuthRateLimiterWithTTL(requestsPerMinute int, cleanupTTL time.Duration) *AuthRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	if cleanupTTL <= 0 {
		cleanupTTL = defaultCleanupTTL
	}

	al := &AuthRateLimiter{
		limiters:   make(map[string]*limiterEntry),
		rate:       rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:      requestsPerMinute,
		cleanupTTL: cleanupTTL,
		stopCh:     make(chan struct{}),
	}
	go al.cleanupLoop(defaultCleanupInterval)
	return al
}

func (al *AuthRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			al.cleanup(time.Now())
		case <-al.stopCh:
			return
		}
	}
}

func (al *AuthRateLimiter) cleanup(now time.Time) {
	al.mu.Lock()
	defer al.mu.Unlock()

	for key, entry := range al.limiters {
		if now.Sub(entry.lastSeen) > al.cleanupTTL {
			delete(al.limiters, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (al *AuthRateLimiter) Stop() {
	al.stopOnce.Do(func() { close(al.stopCh) })
}

// Shutdown satisfies graceful.Shutdowner.
func (al *AuthRateLimiter) Shutdown(context.Context) error {
	al.Stop()
	return nil
}

func (al *AuthRateLimiter) getLimiter(key string) *rate.Limiter {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	if entry, ok := al.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	limiter := rate.NewLimiter(al.rate, al.burst)
	al.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Limit returns middleware that rate limits by client IP and route template.
// c.ClientIP only honours X-Forwarded-For from the engine's trusted proxies.
func (al *AuthRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()
		if !al.getLimiter(key).Allow() {
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many attempts. Please try again later.")
			return
		}
		c.Next()
	}
}

// Size returns the number of tracked IP and route pairs.
func (al *AuthRateLimiter) Size() int {
	al.mu.Lock()
	defer al.mu.Unlock()
	return len(al.limiters)
}
