package usecase

import (
	"context"
	"log/slog"
	"time"

	"LunaroNews/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	categories []string
	limit      int
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs over the given
// categories.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, categories []string, limit int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, categories: categories, limit: limit, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunAll(ctx, trigger)
	})
}

// RunAll runs every configured category once, sequentially.
func (s *Scheduler) RunAll(ctx context.Context, trigger time.Time) {
	for _, key := range s.categories {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.pipeline.Run(ctx, key, s.limit); err != nil {
			s.logger.Error("scheduled run failed", "category", key, "trigger", trigger, "error", err)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
