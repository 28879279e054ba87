package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/shared/server/respond"
)

// RateLimitRule defines a token bucket per principal and group.
type RateLimitRule struct {
	Capacity   float64
	RefillPerS float64
}

// RateLimitConfig wires rules to request groups.
type RateLimitConfig struct {
	// Rules maps a group name to its bucket shape.
	Rules map[string]RateLimitRule
	// DefaultGroup is used when GroupFor returns an unknown group.
	DefaultGroup string
	// GroupFor picks a group for the incoming request.
	GroupFor func(c *gin.Context) string
	// Limiter holds shared state; construct with NewRateLimiter.
	Limiter *RateLimiter
}

type bucket struct {
	tokens float64
	last   time.Time
}

// RateLimiter is an in-process token bucket keyed by principal and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewRateLimiter builds a limiter using wall-clock time.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// NewRateLimiterWithClock builds a limiter with an injected clock for tests.
func NewRateLimiterWithClock(now func() time.Time) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// Allow consumes one token from the bucket for key. When the bucket is
// empty it reports the wait until the next token becomes available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rule.Capacity, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 && rule.RefillPerS > 0 {
		b.tokens = math.Min(rule.Capacity, b.tokens+elapsed*rule.RefillPerS)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	if rule.RefillPerS <= 0 {
		return false, time.Hour
	}
	missing := 1 - b.tokens
	wait := time.Duration(missing / rule.RefillPerS * float64(time.Second))
	return false, wait
}

// RateLimit throttles requests per principal and group.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := cfg.GroupFor(c); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			rule, ok = cfg.Rules[cfg.DefaultGroup]
			if !ok {
				c.Next()
				return
			}
		}

		key := PrincipalFromContext(c) + "|" + group
		allowed, wait := cfg.Limiter.Allow(key, rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterS := int(math.Ceil(wait.Seconds()))
		if retryAfterS < 1 {
			retryAfterS = 1
		}
		c.Writer.Header().Set("Retry-After", strconv.Itoa(retryAfterS))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", map[string]any{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}
