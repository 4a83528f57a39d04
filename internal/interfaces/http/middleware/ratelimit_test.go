package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows the burst then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(1, 3)

		for i := range 3 {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter := NewRateLimiter(1, 2)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills over time", func(t *testing.T) {
		limiter := NewRateLimiter(1, 1)
		now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		now = now.Add(1100 * time.Millisecond)
		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("forgets idle clients", func(t *testing.T) {
		limiter := NewRateLimiter(5, 5)
		now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		limiter.Allow("a")
		limiter.Allow("b")
		assert.Equal(t, 2, limiter.Len())

		now = now.Add(11 * time.Minute)
		limiter.Allow("c")
		assert.Equal(t, 1, limiter.Len())
	})

	t.Run("burst defaults to the rate", func(t *testing.T) {
		limiter := NewRateLimiter(2.5, 0)
		assert.Equal(t, 3, limiter.burst)
	})

	t.Run("concurrent access", func(t *testing.T) {
		limiter := NewRateLimiter(1, 100)
		var wg sync.WaitGroup
		var allowed atomic.Int32

		for range 150 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, allowed.Load(), int32(101))
		assert.GreaterOrEqual(t, allowed.Load(), int32(100))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RateLimit(NewRateLimiter(0.5, 2)))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
