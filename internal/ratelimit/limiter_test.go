package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFallbackLimiter(t *testing.T, cfg Config) (*RateLimiter, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	rl := NewRateLimiter(&RedisClient{}, cfg, metrics)
	t.Cleanup(rl.Close)
	return rl, metrics
}

func TestNewRedisClient_EmptyAddrDisables(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.False(t, client.IsEnabled())
	assert.NoError(t, client.Close())
	assert.Error(t, client.HealthCheck(context.Background()))
	assert.Equal(t, map[string]interface{}{"enabled": false}, client.GetPoolStats())
}

func TestRateLimiter_FallbackBurst(t *testing.T) {
	rl, metrics := newFallbackLimiter(t, Config{IPLimitPerMin: 5, SessionLimitPerHour: 5, BurstMultiplier: 2})

	ctx := context.Background()
	r := Rate{Limit: 5, Period: time.Hour}

	allowed := 0
	var last *Result
	for i := 0; i < 15; i++ {
		result, err := rl.Allow(ctx, "test:burst", r)
		require.NoError(t, err)
		if result.Allowed {
			allowed++
		}
		last = result
	}

	// burst is limit * multiplier; refill over an hour is negligible
	assert.Equal(t, 10, allowed)
	assert.False(t, last.Allowed)
	assert.Equal(t, 5, last.Limit)
	assert.Equal(t, 0, last.Remaining)
	assert.Greater(t, last.RetryAfter, time.Duration(0))
	assert.Equal(t, int64(15), metrics.RateLimitFallbackCount)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newFallbackLimiter(t, Config{IPLimitPerMin: 1, SessionLimitPerHour: 1, BurstMultiplier: 1})
	ctx := context.Background()

	first, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	second, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, second.Allowed)

	other, err := rl.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	session, err := rl.AllowSession(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, session.Allowed, "session and ip keys must not collide")
}

func TestRateLimiter_InvalidRateAndCancelledContext(t *testing.T) {
	rl, _ := newFallbackLimiter(t, DefaultConfig())

	_, err := rl.Allow(context.Background(), "k", Rate{Limit: 0, Period: time.Minute})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rl.Allow(ctx, "k", Rate{Limit: 1, Period: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Concurrency(t *testing.T) {
	rl, _ := newFallbackLimiter(t, Config{BurstMultiplier: 1})
	r := Rate{Limit: 50, Period: time.Hour}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := rl.Allow(context.Background(), "shared", r)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_Invalidation(t *testing.T) {
	rl, _ := newFallbackLimiter(t, Config{IPLimitPerMin: 1, SessionLimitPerHour: 1, BurstMultiplier: 1})
	ctx := context.Background()

	_, _ = rl.AllowSession(ctx, "session-a")
	_, _ = rl.AllowSession(ctx, "session-b")
	_, _ = rl.AllowIP(ctx, "10.0.0.1")
	_, _ = rl.Allow(ctx, endpointKey("contact", "10.0.0.1"), Rate{Limit: 1, Period: time.Minute})
	assert.Equal(t, 4, rl.GetStats()["fallback_limiters"])

	require.NoError(t, rl.InvalidateSession(ctx, "session-a"))
	assert.Equal(t, 3, rl.GetStats()["fallback_limiters"])

	result, err := rl.AllowSession(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, result.Allowed, "invalidated session starts fresh")

	result, err = rl.AllowSession(ctx, "session-b")
	require.NoError(t, err)
	assert.False(t, result.Allowed, "other sessions keep their state")

	require.NoError(t, rl.InvalidateIP(ctx, "10.0.0.1"))
	assert.Equal(t, 2, rl.GetStats()["fallback_limiters"])

	require.NoError(t, rl.InvalidateAll(ctx))
	assert.Equal(t, 0, rl.GetStats()["fallback_limiters"])
}

func TestRateLimiter_Prune(t *testing.T) {
	rl, _ := newFallbackLimiter(t, DefaultConfig())
	ctx := context.Background()
	for _, ip := range []string{"a", "b", "c"} {
		_, _ = rl.AllowIP(ctx, ip)
	}

	assert.Equal(t, 0, rl.pruneFallback(10))
	assert.Equal(t, 3, rl.pruneFallback(2))
	assert.Equal(t, 0, rl.GetStats()["fallback_limiters"])

	// Close is idempotent
	rl.Close()
	rl.Close()
}

func TestIPRateLimitMiddleware(t *testing.T) {
	rl, metrics := newFallbackLimiter(t, Config{IPLimitPerMin: 1, BurstMultiplier: 1})

	router := gin.New()
	router.Use(rl.IPRateLimitMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, int64(1), metrics.RateLimitIPBlocks)
}

func TestSessionRateLimitMiddleware(t *testing.T) {
	rl, metrics := newFallbackLimiter(t, Config{SessionLimitPerHour: 1, BurstMultiplier: 1})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-Session"); id != "" {
			c.Set(SessionContextKey, id)
		}
		c.Next()
	})
	router.Use(rl.SessionRateLimitMiddleware())
	router.POST("/assess", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(session string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/assess", nil)
		if session != "" {
			req.Header.Set("X-Test-Session", session)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("s1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("s1").Code)
	assert.Equal(t, http.StatusOK, send("s2").Code)

	// anonymous callers are only limited per IP
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("").Code)
	}
	assert.Equal(t, int64(1), metrics.RateLimitSessionBlocks)
}

func TestEndpointRateLimitMiddleware(t *testing.T) {
	rl, metrics := newFallbackLimiter(t, Config{BurstMultiplier: 1})

	router := gin.New()
	router.POST("/contact", rl.EndpointRateLimitMiddleware("contact", 2), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int64(1), metrics.GetRateLimitStats()["endpoint_blocks"].(map[string]int64)["contact"])
}

func TestHandleRateLimitStatus(t *testing.T) {
	rl, _ := newFallbackLimiter(t, DefaultConfig())

	router := gin.New()
	router.GET("/status", rl.HandleRateLimitStatus())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ip_per_minute":60`)
	assert.Contains(t, w.Body.String(), `"distributed":false`)
}
