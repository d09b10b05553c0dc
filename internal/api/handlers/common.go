package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurasflow/backend/internal/api/middleware"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/services"
)

// getUserID returns the authenticated user's ID. The auth middleware
// guarantees it is present on protected routes.
func getUserID(c *gin.Context) uuid.UUID {
	userID, _ := middleware.GetUserID(c)
	return userID
}

func getSessionID(c *gin.Context) uuid.UUID {
	sessionID, _ := middleware.GetSessionID(c)
	return sessionID
}

// respondError maps business errors to status codes. Anything outside the
// taxonomy is an internal error: logged with detail, surfaced without.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, services.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed"})
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
