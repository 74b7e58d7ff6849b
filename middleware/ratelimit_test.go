package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hitFrom(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	// Near-zero refill so the bucket never replenishes mid-test.
	r := newRateLimitRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		w := hitFrom(r, "10.0.1.1")
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := hitFrom(r, "10.0.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimit_BucketsPerIP(t *testing.T) {
	r := newRateLimitRouter(0.001, 1)

	assert.Equal(t, http.StatusOK, hitFrom(r, "10.1.1.1").Code)
	assert.Equal(t, http.StatusOK, hitFrom(r, "10.1.1.2").Code)

	// First IP is exhausted, second would be too on its next hit.
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.1.1.1").Code)
}
