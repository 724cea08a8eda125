package middleware

import (
	"net/http"
	"sync"
	"time"

	"slidecast-go/internal/monitoring"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ttlLimiterCache is a simple TTL map for per-key limiters with opportunistic sweeping.
type ttlLimiterCache struct {
	mu        sync.Mutex
	items     map[string]*limiterEntry
	ttl       time.Duration
	lastSweep time.Time
}

func newTTLLimiterCache(ttl time.Duration) *ttlLimiterCache {
	return &ttlLimiterCache{items: make(map[string]*limiterEntry), ttl: ttl}
}

func (c *ttlLimiterCache) get(key string, makeFn func() *rate.Limiter) *rate.Limiter {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		e.lastSeen = now
		return e.lim
	}
	lim := makeFn()
	c.items[key] = &limiterEntry{lim: lim, lastSeen: now}
	monitoring.RateLimitKeysGauge.Set(float64(len(c.items)))
	// opportunistic sweep every ~2 minutes
	if c.lastSweep.IsZero() || now.Sub(c.lastSweep) > 2*time.Minute {
		c.sweepLocked(now)
		c.lastSweep = now
	}
	return lim
}

func (c *ttlLimiterCache) sweepLocked(now time.Time) {
	if c.ttl <= 0 {
		c.ttl = 15 * time.Minute
	}
	for k, e := range c.items {
		if now.Sub(e.lastSeen) > c.ttl {
			delete(c.items, k)
		}
	}
	monitoring.RateLimitKeysGauge.Set(float64(len(c.items)))
}

// RateLimiter creates a per-client-IP rate limiting middleware.
// rps <= 0 disables limiting.
func RateLimiter(rps int, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = rps
	}
	cache := newTTLLimiterCache(15 * time.Minute)

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter := cache.get(key, func() *rate.Limiter {
			return rate.NewLimiter(rate.Limit(rps), burst)
		})

		if !limiter.Allow() {
			monitoring.RateLimitRejectedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"message": "Rate limit exceeded",
					"type":    "rate_limit_error",
				},
			})
			return
		}

		c.Next()
	}
}
