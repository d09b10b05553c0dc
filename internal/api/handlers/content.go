package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurasflow/backend/internal/services"
)

type ContentHandler struct {
	services *services.Container
}

func NewContentHandler(s *services.Container) *ContentHandler {
	return &ContentHandler{services: s}
}

func (h *ContentHandler) Generate(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	var req services.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.services.Content.Generate(c.Request.Context(), getUserID(c), projectID, getSessionID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"cost":  req.Cost(),
	})
}

// Results returns the session's last generated batch. An empty list means
// nothing was generated in this session; the client prompts a re-run.
func (h *ContentHandler) Results(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	items, err := h.services.Content.LastGenerated(c.Request.Context(), getUserID(c), projectID, getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
