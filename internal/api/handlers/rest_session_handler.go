package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"localpro/browse/internal/browse"
	"localpro/browse/internal/models"
)

// RestSessionHandler exposes browse sessions: a server-held list snapshot
// with filters, refreshed on demand.
type RestSessionHandler struct {
	manager *browse.Manager
}

func NewRestSessionHandler(manager *browse.Manager) *RestSessionHandler {
	return &RestSessionHandler{manager: manager}
}

func (h *RestSessionHandler) session(c *gin.Context) (*browse.Session, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	s, err := h.manager.Get(c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return nil, false
	}
	return s, true
}

// refresh runs a refresh and answers with the resulting view. A failed
// fetch still answers with the previous items and the error message.
func (h *RestSessionHandler) refresh(c *gin.Context, s *browse.Session, okStatus int) {
	err := s.Refresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(okStatus, s.View())
	case errors.Is(err, browse.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "A newer refresh replaced this one"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load listings", "data": s.View()})
	}
}

type createSessionRequest struct {
	Kind    string             `json:"kind" binding:"required"`
	Filters models.FilterState `json:"filters"`
}

// CreateSession handles POST /v1/session. It creates the session and runs
// its first refresh.
func (h *RestSessionHandler) CreateSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	kind, ok := models.ParseKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown list kind"})
		return
	}

	s := h.manager.Create(kind, userID)
	s.SetFilters(req.Filters)
	h.refresh(c, s, http.StatusCreated)
}

// GetSession handles GET /v1/session/:id
func (h *RestSessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// SetFilters handles PUT /v1/session/:id/filters. Filters are applied to
// the current snapshot; call refresh to refetch.
func (h *RestSessionHandler) SetFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var filters models.FilterState
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters"})
		return
	}
	s.SetFilters(filters)
	c.JSON(http.StatusOK, s.View())
}

// RefreshSession handles POST /v1/session/:id/refresh
func (h *RestSessionHandler) RefreshSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.refresh(c, s, http.StatusOK)
}

// DeleteSession handles DELETE /v1/session/:id
func (h *RestSessionHandler) DeleteSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.manager.Delete(c.Param("id"), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return
	}
	c.Status(http.StatusNoContent)
}
