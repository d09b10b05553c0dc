package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aurasflow/backend/internal/services"
)

type DashboardHandler struct {
	services *services.Container
}

func NewDashboardHandler(s *services.Container) *DashboardHandler {
	return &DashboardHandler{services: s}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.services.Dashboard.GetStats(getUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCreditHistory returns the user's most recent ledger entries.
func (h *DashboardHandler) GetCreditHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.services.Ledger.History(getUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}
