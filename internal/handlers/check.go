package handlers

import (
	"net/http"

	"linkmanager/internal/models"

	"github.com/gin-gonic/gin"
)

// CheckLinks probes every link on demand for the status badges on the
// landing page. Nothing is persisted and no notifications fire; probe
// failures surface as per-link entries, never as a request failure.
func (h *Handler) CheckLinks(c *gin.Context) {
	results, err := h.monitorService.CheckAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error(), "links": []models.CheckResult{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": results})
}
