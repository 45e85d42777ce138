package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-IP rate limiter configuration.
type RateLimitConfig struct {
	RequestsPerMin int
	Burst          int
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMin: 60,
		Burst:          120,
	}
}

// RateLimiter provides in-memory per-IP token-bucket rate limiting.
type RateLimiter struct {
	config   RateLimitConfig
	limiters map[string]*rate.Limiter
	mutex    sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mutex.RLock()
	limiter, exists := rl.limiters[ip]
	rl.mutex.RUnlock()
	if exists {
		return limiter
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	if limiter, exists = rl.limiters[ip]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(float64(rl.config.RequestsPerMin)/60.0), rl.config.Burst)
	rl.limiters[ip] = limiter
	return limiter
}

// Middleware rejects requests over the per-IP budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
