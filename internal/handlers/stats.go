package handlers

import (
	"net/http"

	"linkmanager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetStats(c *gin.Context) {
	snapshot, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type recordStatRequest struct {
	Type   string `json:"type"`
	LinkID string `json:"linkId"`
}

// RecordStat counts a copy/telegram click. Unknown event types are
// acknowledged without counting, so a stale frontend cannot error loops
// into the visitor's console.
func (h *Handler) RecordStat(c *gin.Context) {
	var req recordStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Type == services.StatCopyClicks || req.Type == services.StatTelegramClicks {
		if err := h.statsService.RecordStat(c.Request.Context(), req.Type, clientIP(c), req.LinkID); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
