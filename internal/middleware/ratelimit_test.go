package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func get(r *gin.Engine, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitWithinBurst(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 3})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "10.0.0.1").Code)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	require.Equal(t, http.StatusOK, get(r, "10.0.0.1").Code)

	w := get(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, w.Body.String())
}

func TestRateLimitPerClient(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	require.Equal(t, http.StatusOK, get(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1").Code)

	// A different client gets its own bucket.
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2").Code)
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	require.True(t, rl.GetLimiter("10.0.0.1").Allow())
	require.False(t, rl.GetLimiter("10.0.0.1").Allow())

	rl.Reset()
	assert.True(t, rl.GetLimiter("10.0.0.1").Allow())
}
