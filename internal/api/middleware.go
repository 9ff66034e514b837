// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corphon/LitLensMCP/internal/utils"
)

// RateLimiter is a fixed-window limiter keyed by client.
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*visitor
}

type visitor struct {
	limit     int
	remaining int
	reset     time.Time
}

// NewRateLimiter creates a limiter and starts background cleanup.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, v := range rl.visitors {
			if now.After(v.reset) {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether the keyed client may make another request in
// the current window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, exists := rl.visitors[key]

	if !exists || now.After(v.reset) {
		rl.visitors[key] = &visitor{
			limit:     limit,
			remaining: limit - 1,
			reset:     now.Add(window),
		}
		return true
	}

	if v.remaining <= 0 {
		return false
	}
	v.remaining--
	return true
}

func (rl *RateLimiter) headerValues(key string, limit int, window time.Duration) (int, int, int64) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	v, exists := rl.visitors[key]
	if !exists {
		return limit, limit, time.Now().Add(window).Unix()
	}

	remaining := v.remaining
	if remaining < 0 {
		remaining = 0
	}
	return limit, remaining, v.reset.Unix()
}

var rateLimiter = NewRateLimiter()

// RateLimitMiddleware enforces a per-client limit and sets the standard
// X-RateLimit headers.
func RateLimitMiddleware(limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed := rateLimiter.Allow(key, limit, window)
		lim, remaining, reset := rateLimiter.headerValues(key, limit, window)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lim))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":   false,
				"error":     "Rate limit exceeded",
				"code":      ErrorRateLimited,
				"timestamp": time.Now().Format(time.RFC3339),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitByIP keys the limit on the client IP.
func RateLimitByIP(limit int, window time.Duration) gin.HandlerFunc {
	return RateLimitMiddleware(limit, window, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// AnalysisRateLimit bounds the analysis endpoints, which burn CPU.
func AnalysisRateLimit() gin.HandlerFunc {
	return RateLimitByIP(30, time.Hour)
}

// QARateLimit bounds the question answering endpoint.
func QARateLimit() gin.HandlerFunc {
	return RateLimitByIP(30, time.Minute)
}

// DefaultRateLimit is the general limit for API endpoints.
func DefaultRateLimit() gin.HandlerFunc {
	return RateLimitByIP(100, time.Minute)
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware() gin.HandlerFunc {
	metrics := utils.GetMetricsCollector()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.IncrementCounter("http.requests")
		metrics.IncrementCounter("http.status." + strconv.Itoa(c.Writer.Status()))
		metrics.ObserveDuration("http.latency."+c.Request.Method+" "+route, time.Since(start))
	}
}

// RequestIDMiddleware tags every request with an id that the response
// helpers echo back.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
