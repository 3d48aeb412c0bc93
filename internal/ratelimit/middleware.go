package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/glucoscreen/internal/security"
)

// SessionContextKey is the gin context key the session middleware sets
const SessionContextKey = security.SessionContextKey

func retrySeconds(d time.Duration) int {
	secs := int(d.Seconds())
	if d > 0 && secs == 0 {
		return 1
	}
	return secs
}

// IPRateLimitMiddleware limits requests per client IP
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// a failing limiter never blocks traffic
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
			}

			c.Header("Retry-After", strconv.Itoa(retrySeconds(result.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for IP",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per minute", result.Limit),
				"retry_after": retrySeconds(result.RetryAfter),
				"reset_at":    result.ResetAt.Unix(),
			})
			return
		}

		c.Next()
	}
}

// SessionRateLimitMiddleware limits assessments per anonymous session.
// Requests without a session pass through.
func (rl *RateLimiter) SessionRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(SessionContextKey)
		if sessionID == "" {
			c.Next()
			return
		}

		result, err := rl.AllowSession(c.Request.Context(), sessionID)
		if err != nil {
			slog.Error("Session rate limit check failed", "session_id", shortID(sessionID), "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Session-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Session-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Session-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitSessionBlock()
			}

			c.Header("Retry-After", strconv.Itoa(retrySeconds(result.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "hourly assessment limit exceeded",
				"message":     fmt.Sprintf("This session has used all %d assessments for the hour", result.Limit),
				"retry_after": retrySeconds(result.RetryAfter),
				"reset_at":    result.ResetAt.Unix(),
			})
			return
		}

		c.Next()
	}
}

// EndpointRateLimitMiddleware applies a per-minute limit to one endpoint per IP
func (rl *RateLimiter) EndpointRateLimitMiddleware(endpoint string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.Allow(c.Request.Context(), endpointKey(endpoint, ip), Rate{Limit: limit, Period: time.Minute})
		if err != nil {
			slog.Error("Endpoint rate limit check failed", "endpoint", endpoint, "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Endpoint-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Endpoint-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitEndpoint(endpoint)
			}

			c.Header("Retry-After", strconv.Itoa(retrySeconds(result.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("rate limit exceeded for endpoint: %s", endpoint),
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per minute for this endpoint", result.Limit),
				"retry_after": retrySeconds(result.RetryAfter),
			})
			return
		}

		c.Next()
	}
}

// HandleRateLimitStatus reports the limits that apply to the caller
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"ip_per_minute":    rl.config.IPLimitPerMin,
				"session_per_hour": rl.config.SessionLimitPerHour,
				"distributed":      rl.redisClient.IsEnabled(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if sessionID := c.GetString(SessionContextKey); sessionID != "" {
			status["session_id"] = sessionID
		}
		c.JSON(http.StatusOK, status)
	}
}
