package handlers

import (
	"net/http"

	"linkmanager/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter, templatePath string) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	if templatePath != "" {
		r.LoadHTMLGlob(templatePath)
	}

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	r.Use(sessions.Sessions("linkmanager_session", store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public surface
	r.GET("/", h.ShowIndex)
	r.GET("/qr/:id", h.LinkQRCode)
	r.GET("/api/stats", h.GetStats)
	r.POST("/api/stats", h.RecordStat)
	r.GET("/api/check-links", h.CheckLinks)

	// Admin surface
	r.GET("/admin", h.ShowAdmin)
	adminAPI := r.Group("/admin/api")
	{
		adminAPI.POST("/setup", h.AdminSetup)
		adminAPI.POST("/login", h.AdminLogin)
		adminAPI.GET("/logout", h.AdminLogout)
		adminAPI.POST("/logout", h.AdminLogout)

		authorized := adminAPI.Group("")
		authorized.Use(h.AdminRequired())
		{
			authorized.POST("/update-config", h.UpdateConfig)
			authorized.POST("/add-link", h.AddLink)
			authorized.POST("/delete-link", h.DeleteLink)
			authorized.POST("/update-link", h.UpdateLink)
			authorized.POST("/reorder-links", h.ReorderLinks)
			authorized.POST("/test-telegram", h.TestTelegram)
		}
	}

	return r
}
