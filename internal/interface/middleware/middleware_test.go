package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// httptest requests come from 192.0.2.1.
const testPeer = "192.0.2.1"

func limitedEngine(t *testing.T, max int, allow AllowFunc, trusted ...string) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.Use(RealIP())
	r.POST("/add-doctor", RateLimit(rdb, max, time.Minute, KeyByIPAndPath(), allow), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func post(r http.Handler, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/add-doctor", nil)
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	r := limitedEngine(t, 2, nil, testPeer)

	assert.Equal(t, http.StatusNoContent, post(r, "203.0.113.7").Code)
	w := post(r, "203.0.113.7")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post(r, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// another client has its own window
	assert.Equal(t, http.StatusNoContent, post(r, "198.51.100.2").Code)
}

func TestRateLimitPrivateBypass(t *testing.T) {
	r := limitedEngine(t, 1, AllowPrivateIP(), testPeer)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.5").Code)
	}
}

func TestRateLimitIgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	r := limitedEngine(t, 1, AllowPrivateIP())

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
	// a different spoofed address is still the same client
	assert.Equal(t, http.StatusTooManyRequests, post(r, "203.0.113.9").Code)
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())
}
