package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"localpro/browse/internal/history"
	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
)

// IHistoryStore is the search history store used by the handler.
type IHistoryStore interface {
	Load(ctx context.Context, key string) []string
	Record(ctx context.Context, key, query string) ([]string, error)
	Clear(ctx context.Context, key string) error
}

// RestHistoryHandler serves a user's recent searches per list kind.
// Storage failures are logged and never fail the request.
type RestHistoryHandler struct {
	store      IHistoryStore
	popularity services.IPopularityService
	logger     *zap.Logger
}

func NewRestHistoryHandler(store IHistoryStore, popularity services.IPopularityService, logger *zap.Logger) *RestHistoryHandler {
	return &RestHistoryHandler{store: store, popularity: popularity, logger: logging.OrNop(logger)}
}

func (h *RestHistoryHandler) key(c *gin.Context) (models.Kind, string, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return "", "", false
	}
	userID, ok := requireUser(c)
	if !ok {
		return "", "", false
	}
	return kind, history.Key(userID, kind), true
}

// GetHistory handles GET /v1/history/:kind
func (h *RestHistoryHandler) GetHistory(c *gin.Context) {
	_, key, ok := h.key(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.store.Load(c.Request.Context(), key)})
}

type recordSearchRequest struct {
	Query string `json:"query"`
}

// RecordSearch handles POST /v1/history/:kind
func (h *RestHistoryHandler) RecordSearch(c *gin.Context) {
	kind, key, ok := h.key(c)
	if !ok {
		return
	}
	var req recordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	entries, err := h.store.Record(ctx, key, req.Query)
	if err != nil {
		h.logger.Warn("failed to persist search history", zap.String("key", key), zap.Error(err))
	}

	if h.popularity != nil && strings.TrimSpace(req.Query) != "" {
		if err := h.popularity.Increment(ctx, kind, req.Query); err != nil {
			h.logger.Warn("failed to count search", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// ClearHistory handles DELETE /v1/history/:kind
func (h *RestHistoryHandler) ClearHistory(c *gin.Context) {
	_, key, ok := h.key(c)
	if !ok {
		return
	}
	if err := h.store.Clear(c.Request.Context(), key); err != nil {
		h.logger.Warn("failed to clear search history", zap.String("key", key), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"data": []string{}})
}
