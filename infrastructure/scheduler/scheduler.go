// Package scheduler runs the periodic retention sweep on gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"yt2mp3/domain/retention"
	"yt2mp3/infrastructure/logfields"
)

// Sweeper removes expired output files
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (*retention.SweepResult, error)
}

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleSweep runs sweeper every interval, starting immediately.
// Runs never overlap; a run still in progress causes the next one to be skipped.
func (s *Scheduler) ScheduleSweep(ctx context.Context, interval, maxAge time.Duration, sweeper Sweeper) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if maxAge <= 0 {
		return "", retention.ErrInvalidMaxAge
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.runSweep(ctx, maxAge, sweeper) }),
		gocron.WithName("retention-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create sweep job: %w", err)
	}

	s.logger.Info("Scheduled retention sweep",
		slog.Duration("interval", interval),
		slog.Duration("max_age", maxAge))
	return job.ID().String(), nil
}

func (s *Scheduler) runSweep(ctx context.Context, maxAge time.Duration, sweeper Sweeper) {
	start := time.Now()
	result, err := sweeper.Sweep(ctx, maxAge)
	if err != nil {
		s.logger.Error("Retention sweep failed", logfields.Error(err))
	}
	if result != nil {
		s.logger.Debug("Retention sweep finished",
			slog.Int("removed", len(result.RemovedFiles)),
			logfields.Bytes(result.FreedBytes),
			logfields.Duration(time.Since(start)))
	}
}
