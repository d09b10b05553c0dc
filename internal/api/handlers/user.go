package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurasflow/backend/internal/services"
)

type UserHandler struct {
	services *services.Container
}

func NewUserHandler(s *services.Container) *UserHandler {
	return &UserHandler{services: s}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.services.User.Get(getUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.services.User.UpdateProfile(getUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
