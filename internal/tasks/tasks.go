package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypePopularRefresh = "suggest:popular:refresh"
)

// PopularTermsLimit is how many top searches make up a refreshed snapshot.
const PopularTermsLimit = 10

// --- Task Client (Enqueuing tasks) ---

// IAsynqClient is the part of asynq.Client used for enqueuing.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// PopularRefreshPayload is the payload of TypePopularRefresh.
type PopularRefreshPayload struct {
	Kind models.Kind `json:"kind"`
}

// NewPopularRefreshTask builds a refresh task for kind.
func NewPopularRefreshTask(kind models.Kind) (*asynq.Task, error) {
	payload, err := json.Marshal(PopularRefreshPayload{Kind: kind})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePopularRefresh, payload, asynq.MaxRetry(3)), nil
}

// EnqueuePopularRefresh enqueues one refresh task per kind and returns how
// many were enqueued. It stops at the first failure.
func EnqueuePopularRefresh(ctx context.Context, client IAsynqClient, kinds []models.Kind) (int, error) {
	enqueued := 0
	for _, kind := range kinds {
		task, err := NewPopularRefreshTask(kind)
		if err != nil {
			return enqueued, fmt.Errorf("failed to build refresh task for %s: %w", kind, err)
		}
		if _, err := client.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
			return enqueued, fmt.Errorf("failed to enqueue refresh task for %s: %w", kind, err)
		}
		enqueued++
	}
	return enqueued, nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	popularityService services.IPopularityService
	logger            *zap.Logger
}

func NewTaskProcessor(popularityService services.IPopularityService, logger *zap.Logger) *TaskProcessor {
	return &TaskProcessor{
		popularityService: popularityService,
		logger:            logging.OrNop(logger),
	}
}

// Mux registers the task handlers.
func (p *TaskProcessor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePopularRefresh, p.HandlePopularRefreshTask)
	return mux
}

// StartServer starts an Asynq server processing p's tasks in the
// background. Stop it with Shutdown.
func StartServer(rdb *redis.Client, p *TaskProcessor) (*asynq.Server, error) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				p.logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	if err := srv.Start(p.Mux()); err != nil {
		return nil, fmt.Errorf("could not start Asynq server: %w", err)
	}
	p.logger.Info("registered background task handlers", zap.String("types", TypePopularRefresh))
	return srv, nil
}

// --- Task Handlers ---

// HandlePopularRefreshTask copies the most searched queries of a kind into
// its suggestion snapshot. An empty ranking leaves the snapshot untouched.
func (p *TaskProcessor) HandlePopularRefreshTask(ctx context.Context, t *asynq.Task) error {
	var payload PopularRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal refresh task payload: %v: %w", err, asynq.SkipRetry)
	}
	if _, ok := models.ParseKind(string(payload.Kind)); !ok {
		return fmt.Errorf("unknown kind %q in refresh task: %w", payload.Kind, asynq.SkipRetry)
	}

	top, err := p.popularityService.Top(ctx, payload.Kind, PopularTermsLimit)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		p.logger.Debug("no searches recorded yet", zap.String("kind", string(payload.Kind)))
		return nil
	}
	if err := p.popularityService.SetTerms(ctx, payload.Kind, top); err != nil {
		return err
	}

	p.logger.Info("refreshed popular terms", zap.String("kind", string(payload.Kind)), zap.Int("count", len(top)))
	return nil
}
