package handlers

import (
	"net/http"

	"linkmanager/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionTokenKey = "admin_token"

// isAuthenticated compares the session's token against the one stored
// server-side, so a logout (or a new login) invalidates old cookies.
func (h *Handler) isAuthenticated(c *gin.Context) bool {
	session := sessions.Default(c)
	tokenVal := session.Get(sessionTokenKey)
	if tokenVal == nil {
		return false
	}
	token, ok := tokenVal.(string)
	if !ok || token == "" {
		return false
	}

	stored, err := h.settingsService.SessionToken(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read session token", "error", err)
		return false
	}
	return stored != "" && stored == token
}

func (h *Handler) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.isAuthenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		c.Next()
	}
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// clientIP prefers the edge headers a CDN sets before falling back to
// gin's own resolution.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
