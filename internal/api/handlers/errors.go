package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"localpro/browse/internal/api/middleware"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
)

// kindParam reads the :kind path parameter, answering 400 when it is unknown.
func kindParam(c *gin.Context) (models.Kind, bool) {
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown list kind"})
		return "", false
	}
	return kind, true
}

// requireUser returns the authenticated user, answering 401 when there is none.
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return userID, true
}

// respondServiceError maps service errors to a status. Not-found and
// not-allowed errors carry a message meant for the user; anything else
// gets the fallback.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
