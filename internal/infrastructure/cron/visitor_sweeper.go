package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops state that has been idle longer than maxIdle
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// VisitorSweeper periodically evicts idle rate-limit visitors
type VisitorSweeper struct {
	target   Sweeper
	cron     *cron.Cron
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger
}

// NewVisitorSweeper creates a new visitor sweeper
func NewVisitorSweeper(target Sweeper, interval, maxIdle time.Duration, logger *zap.Logger) *VisitorSweeper {
	return &VisitorSweeper{
		target:   target,
		cron:     cron.New(),
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

// Start starts the sweeper
func (s *VisitorSweeper) Start() error {
	cronExpr := fmt.Sprintf("@every %s", s.interval.String())

	_, err := s.cron.AddFunc(cronExpr, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("visitor sweeper started", zap.Duration("interval", s.interval))

	return nil
}

// Stop stops the sweeper and waits for a running sweep
func (s *VisitorSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("visitor sweeper stopped")
}

func (s *VisitorSweeper) sweep() {
	removed := s.target.Sweep(s.maxIdle)
	if removed > 0 {
		s.logger.Debug("evicted idle visitors", zap.Int("count", removed))
	}
}
