package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"localpro/browse/internal/api/handlers"
	"localpro/browse/internal/api/middleware"
	"localpro/browse/internal/browse"
	"localpro/browse/internal/config"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
	"localpro/browse/internal/tasks"
)

// Deps are the services the public API is built on.
type Deps struct {
	ListingService    services.IListingService
	ActionService     services.IActionService
	PopularityService services.IPopularityService
	SuggestionService services.ISuggestionService
	HistoryStore      handlers.IHistoryStore
	Sessions          *browse.Manager
	RateLimiter       *middleware.RateLimiterMiddleware
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// Apply global middleware first (order matters)
	r.Use(middleware.RequestLogger(logger), gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	// Rate limiting runs after authentication so signed-in callers get a
	// bucket per user rather than per IP.
	var limit []gin.HandlerFunc
	if deps.RateLimiter != nil {
		limit = append(limit, deps.RateLimiter.Limit())
	}

	// Initialize handlers
	restListingHandler := handlers.NewRestListingHandler(deps.ListingService)
	restSuggestionHandler := handlers.NewRestSuggestionHandler(deps.SuggestionService)
	restHistoryHandler := handlers.NewRestHistoryHandler(deps.HistoryStore, deps.PopularityService, logger)
	restSessionHandler := handlers.NewRestSessionHandler(deps.Sessions)
	restActionHandler := handlers.NewRestActionHandler(deps.ActionService)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Public routes; a token, when present, enables owner=me and personal kinds.
		public := v1.Group("/")
		public.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret))
		public.Use(limit...)
		{
			public.GET("/listing/:kind", restListingHandler.ListListings)
			public.GET("/listing/:kind/:id", restListingHandler.GetListingByID)
			public.GET("/suggestions/:kind", restSuggestionHandler.GetSuggestions)
		}

		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		authRequired.Use(limit...)
		{
			authRequired.GET("/history/:kind", restHistoryHandler.GetHistory)
			authRequired.POST("/history/:kind", restHistoryHandler.RecordSearch)
			authRequired.DELETE("/history/:kind", restHistoryHandler.ClearHistory)

			authRequired.POST("/session", restSessionHandler.CreateSession)
			authRequired.GET("/session/:id", restSessionHandler.GetSession)
			authRequired.PUT("/session/:id/filters", restSessionHandler.SetFilters)
			authRequired.POST("/session/:id/refresh", restSessionHandler.RefreshSession)
			authRequired.DELETE("/session/:id", restSessionHandler.DeleteSession)

			authRequired.POST("/application/:id/withdraw", restActionHandler.WithdrawApplication)
			authRequired.POST("/booking/:id/cancel", restActionHandler.CancelBooking)
			authRequired.POST("/wallet/default-payment-method", restActionHandler.SetDefaultPaymentMethod)
			authRequired.POST("/job/:id/status", restActionHandler.ChangeJobStatus)
		}

		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		adminRequired.Use(limit...)
		{
			adminRequired.POST("/listing/:kind", restListingHandler.CreateListing)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine.
func SetupServiceRouter(taskClient tasks.IAsynqClient, shutdownChan chan<- struct{}, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			logger.Info("received shutdown command via service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				logger.Warn("shutdown channel already signaled")
			}
		case "refreshPopular":
			// Optional arguments: ["product", "job"]; all kinds when omitted.
			kinds := models.AllKinds
			if len(req.Arguments) > 0 {
				var names []string
				if err := json.Unmarshal(req.Arguments, &names); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array of kinds"})
					return
				}
				kinds = make([]models.Kind, 0, len(names))
				for _, name := range names {
					kind, ok := models.ParseKind(name)
					if !ok {
						c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("Unknown kind: %s", name)})
						return
					}
					kinds = append(kinds, kind)
				}
			}
			n, err := tasks.EnqueuePopularRefresh(c.Request.Context(), taskClient, kinds)
			if err != nil {
				logger.Error("service API refresh failed", zap.Int("enqueued", n), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to enqueue refresh"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "result": n})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
