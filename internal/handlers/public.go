package handlers

import (
	"net/http"
	"sort"

	"linkmanager/internal/models"
	"linkmanager/internal/services"

	"github.com/gin-gonic/gin"
)

// ShowIndex renders the landing page and records the visit, unless the
// visitor IP is the configured ignored one. A stats failure must never
// break the page render.
func (h *Handler) ShowIndex(c *gin.Context) {
	info := models.ClientInfo{
		IP:        clientIP(c),
		UserAgent: c.Request.UserAgent(),
	}
	if err := h.statsService.RecordPageView(c.Request.Context(), info); err != nil {
		h.logger.Error("Failed to record page view", "error", err)
	}

	settings, err := h.settingsService.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", "error", err)
		settings = &models.Settings{}
	}

	links := settings.Links
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Order < links[j].Order
	})

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Links":                links,
		"TelegramGroup":        settings.TelegramGroup,
		"TelegramButtonText":   settings.TelegramButtonText,
		"TelegramButtonHidden": settings.TelegramButtonHidden,
	})
}

// LinkQRCode streams a PNG QR code of the link's URL.
func (h *Handler) LinkQRCode(c *gin.Context) {
	linkID := c.Param("id")

	links, err := h.settingsService.Links(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	for _, link := range links {
		if link.ID == linkID && link.Configured() {
			png, err := services.GenerateLinkQR(link.URL, 256)
			if err != nil {
				c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
				return
			}
			c.Data(http.StatusOK, "image/png", png)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "link not found"})
}
