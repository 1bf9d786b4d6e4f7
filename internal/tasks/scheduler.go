package tasks

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
)

// Scheduler wraps robfig/cron and periodically enqueues popular-term refreshes.
type Scheduler struct {
	cron   *cron.Cron
	client IAsynqClient
	kinds  []models.Kind
	spec   string // cron spec, e.g. "@every 1h"
	logger *zap.Logger
}

// NewScheduler creates a Scheduler enqueuing a refresh of every kind on spec.
func NewScheduler(client IAsynqClient, spec string, kinds []models.Kind, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		client: client,
		kinds:  kinds,
		spec:   spec,
		logger: logging.OrNop(logger),
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("popular-term scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("popular-term scheduler stopped")
}

// RunOnce enqueues one refresh per kind.
func (s *Scheduler) RunOnce(ctx context.Context) {
	n, err := EnqueuePopularRefresh(ctx, s.client, s.kinds)
	if err != nil {
		s.logger.Error("failed to enqueue popular-term refresh", zap.Int("enqueued", n), zap.Error(err))
		return
	}
	s.logger.Debug("enqueued popular-term refresh", zap.Int("count", n))
}
