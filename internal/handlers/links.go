package handlers

import (
	"errors"
	"net/http"

	"linkmanager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddLink(c *gin.Context) {
	name := c.PostForm("name")
	url := c.PostForm("url")
	description := c.PostForm("description")

	if name == "" || url == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "name and URL must not be empty"})
		return
	}

	link, err := h.linksService.AddLink(c.Request.Context(), name, url, description, clientIP(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "link added", "link": link})
}

type deleteLinkRequest struct {
	LinkID string `json:"linkId"`
}

func (h *Handler) DeleteLink(c *gin.Context) {
	var req deleteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LinkID == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "link id must not be empty"})
		return
	}

	err := h.linksService.DeleteLink(c.Request.Context(), req.LinkID, clientIP(c))
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "link deleted"})
}

func (h *Handler) UpdateLink(c *gin.Context) {
	linkID := c.PostForm("linkId")
	name := c.PostForm("name")
	url := c.PostForm("url")
	description := c.PostForm("description")

	if linkID == "" || name == "" || url == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "parameters must not be empty"})
		return
	}

	link, err := h.linksService.UpdateLink(c.Request.Context(), linkID, name, url, description, clientIP(c))
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "link updated", "link": link})
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

func (h *Handler) ReorderLinks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderedIDs == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "invalid parameters"})
		return
	}

	if _, err := h.linksService.ReorderLinks(c.Request.Context(), req.OrderedIDs, clientIP(c)); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "link order updated"})
}
