// Package scheduler triggers recurring pricing runs on a cron expression.
// Each trigger still executes the one atomic read-compute-write cycle; runs
// never overlap.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/birdieworks/fairway/internal/domain/pricing"
	"github.com/birdieworks/fairway/pkg/logger"
)

// Runner is the batch entrypoint the scheduler drives.
type Runner interface {
	RunPricing(ctx context.Context) (*pricing.Run, error)
}

// Scheduler wraps a cron instance around a Runner.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	logger  logger.Logger
	running atomic.Bool
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom logger for the scheduler.
func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a scheduler around the given runner.
func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a pricing run at the given cron spec, e.g. "30 4 * * 1".
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("register pricing schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) trigger(ctx context.Context) {
	// A slow run must not be interleaved with the next tick.
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn(ctx, "pricing run still in progress, skipping tick")
		return
	}
	defer s.running.Store(false)

	run, err := s.runner.RunPricing(ctx)
	if err != nil {
		s.logger.Error(ctx, "scheduled pricing run failed", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "scheduled pricing run finished",
		logger.String("run_id", run.RunID.String()),
		logger.Int("golfers", len(run.Prices)))
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
