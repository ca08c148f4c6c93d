package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Cycler runs one full pipeline cycle: ingest then score.
type Cycler interface {
	Cycle(ctx context.Context) error
}

type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(cycler Cycler, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cycler:   cycler,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs a cycle immediately, then once per interval until the context
// is cancelled. A failed cycle is logged and the next tick proceeds.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.cycler.Cycle(cycleCtx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}
