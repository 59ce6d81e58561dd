package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkmanager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Handler{logger: logger}
	limiter := services.NewIPRateLimiter(rate.Limit(0), 1, logger)

	r := gin.New()
	r.Use(h.RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("CF-Connecting-IP", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("1.1.1.1"))
	// a different client still has its own budget
	assert.Equal(t, http.StatusOK, request("2.2.2.2"))
}

func TestClientIPPrecedence(t *testing.T) {
	newCtx := func() (*gin.Context, *http.Request) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request = req
		return c, req
	}

	t.Run("CF header wins", func(t *testing.T) {
		c, req := newCtx()
		req.Header.Set("CF-Connecting-IP", "1.1.1.1")
		req.Header.Set("X-Real-IP", "2.2.2.2")
		assert.Equal(t, "1.1.1.1", clientIP(c))
	})

	t.Run("X-Real-IP next", func(t *testing.T) {
		c, req := newCtx()
		req.Header.Set("X-Real-IP", "2.2.2.2")
		assert.Equal(t, "2.2.2.2", clientIP(c))
	})

	t.Run("falls back to the connection address", func(t *testing.T) {
		c, _ := newCtx()
		assert.Equal(t, "192.0.2.1", clientIP(c))
	})
}
