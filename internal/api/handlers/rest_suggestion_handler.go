package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"localpro/browse/internal/services"
)

// RestSuggestionHandler serves search-as-you-type suggestions.
type RestSuggestionHandler struct {
	suggestionService services.ISuggestionService
}

func NewRestSuggestionHandler(suggestionService services.ISuggestionService) *RestSuggestionHandler {
	return &RestSuggestionHandler{suggestionService: suggestionService}
}

// GetSuggestions handles GET /v1/suggestions/:kind?q=
func (h *RestSuggestionHandler) GetSuggestions(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.suggestionService.Suggest(c.Request.Context(), kind, c.Query("q"))})
}
