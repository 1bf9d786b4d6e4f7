package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"localpro/browse/internal/api"
	"localpro/browse/internal/api/middleware"
	"localpro/browse/internal/auth"
	"localpro/browse/internal/browse"
	"localpro/browse/internal/cache"
	"localpro/browse/internal/config"
	"localpro/browse/internal/db"
	"localpro/browse/internal/history"
	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
	"localpro/browse/internal/storage"
	"localpro/browse/internal/suggest"
	"localpro/browse/internal/tasks"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var runMode string

	root := &cobra.Command{
		Use:          "browse",
		Short:        "LocalPro browse gateway: list views, search history and suggestions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch runMode {
			case "api", "bg", "all":
			default:
				return fmt.Errorf("invalid run mode %q: want api, bg or all", runMode)
			}
			cfg, err := config.Load(runMode)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&runMode, "mode", "m", "all", "Run mode: 'api', 'bg' (background tasks), 'all'")

	root.AddCommand(newTokenCmd())
	return root
}

// newTokenCmd issues a token for local testing against JWT_SECRET.
func newTokenCmd() *cobra.Command {
	var (
		admin bool
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print a bearer token for a user (development only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("token")
			if err != nil {
				return err
			}
			token, err := auth.GenerateJWT(args[0], admin, cfg.JwtSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Issue an admin token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			logger.Warn("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(ctx, mongoDb); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			logger.Warn("error disconnecting from Redis", zap.Error(err))
		}
	}()

	terms := suggest.DefaultTerms
	if cfg.SuggestionTermsFile != "" {
		terms, err = suggest.LoadTerms(cfg.SuggestionTermsFile, suggest.DefaultTerms)
		if err != nil {
			return err
		}
		logger.Info("loaded suggestion terms", zap.String("file", cfg.SuggestionTermsFile))
	}

	// Initialize Services needed by handlers and/or task processor
	listingService := services.NewListingService(mongoDb)
	actionService := services.NewActionService(mongoDb)
	popularityService := services.NewPopularityService(redisClient)
	suggestionService := services.NewSuggestionService(terms, popularityService, logger)

	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup
	// Fatal server errors; any one of them triggers shutdown.
	errCh := make(chan error, 2)

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(taskClient, shutdownChan, logger),
	}
	serve(&wg, errCh, serviceSrv, "service API", logger)

	// --- Mode-specific servers ---
	var (
		mainApiSrv  *http.Server
		sessions    *browse.Manager
		rateLimiter *middleware.RateLimiterMiddleware
		taskSrv     *asynq.Server
		scheduler   *tasks.Scheduler
	)

	logger.Info("starting application", zap.String("mode", cfg.RunMode), zap.String("history_backend", cfg.HistoryBackend))

	if cfg.RunMode == "api" || cfg.RunMode == "all" {
		kv, err := storage.New(ctx, cfg, mongoDb, redisClient)
		if err != nil {
			return fmt.Errorf("failed to initialize history storage: %w", err)
		}
		sessions = browse.NewManager(listingService, cfg.FetchTimeout, cfg.SessionTTL, logger)
		rateLimiter = middleware.NewRateLimiterMiddleware(cfg.RateLimitRefillRate, cfg.RateLimitBucketSize, logger)

		mainApiSrv = &http.Server{
			Addr: ":" + cfg.ApiPort,
			Handler: api.SetupRouter(cfg, api.Deps{
				ListingService:    listingService,
				ActionService:     actionService,
				PopularityService: popularityService,
				SuggestionService: suggestionService,
				HistoryStore:      history.NewStore(kv, logger),
				Sessions:          sessions,
				RateLimiter:       rateLimiter,
			}, logger),
		}
		serve(&wg, errCh, mainApiSrv, "main API", logger)
	}

	if cfg.RunMode == "bg" || cfg.RunMode == "all" {
		taskSrv, err = tasks.StartServer(redisClient, tasks.NewTaskProcessor(popularityService, logger))
		if err != nil {
			return err
		}
		scheduler = tasks.NewScheduler(taskClient, cfg.PopularRefreshSpec, models.AllKinds, logger)
		if err := scheduler.Start(ctx); err != nil {
			taskSrv.Shutdown()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case <-shutdownChan:
		logger.Info("shutdown requested via service API")
	case runErr = <-errCh:
		logger.Error("server failed, shutting down", zap.Error(runErr))
	case <-ctx.Done():
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if scheduler != nil {
		scheduler.Stop()
	}
	if taskSrv != nil {
		taskSrv.Shutdown()
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			logger.Warn("main API shutdown error", zap.Error(err))
		}
	}
	if sessions != nil {
		if err := sessions.Close(ctxShutdown); err != nil {
			logger.Warn("session manager shutdown error", zap.Error(err))
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("service API shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("application stopped")
	return runErr
}

// serve runs srv until it is shut down, reporting unexpected failures on errCh.
func serve(wg *sync.WaitGroup, errCh chan<- error, srv *http.Server, name string, logger *zap.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("listening", zap.String("server", name), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("%s: %w", name, err):
			default:
			}
		}
		logger.Info("server stopped", zap.String("server", name))
	}()
}
