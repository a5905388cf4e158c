package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

// Pruner is implemented by limiters that keep their counters in the database
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

type Schedule struct {
	// Cron expression for the retention cleanup, empty disables it
	Cleanup string
	// Cron expression for the weekly report, empty disables it
	WeeklyReport string
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the background jobs. pruner may be nil.
func NewScheduler(r *ResourceRequests, pruner Pruner, s Schedule) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	if s.Cleanup != "" {
		_, err := c.AddFunc(s.Cleanup, func() { runCleanup(r, pruner) })
		if err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule %q, %w", s.Cleanup, err)
		}

		zap.L().Debug("Request cleanup attached", zap.String("schedule", s.Cleanup))
	}

	if s.WeeklyReport != "" {
		_, err := c.AddFunc(s.WeeklyReport, func() { runWeeklyReport(r) })
		if err != nil {
			return nil, fmt.Errorf("invalid weekly report schedule %q, %w", s.WeeklyReport, err)
		}

		zap.L().Debug("Weekly report attached", zap.String("schedule", s.WeeklyReport))
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Jobs returns how many jobs are registered
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func runCleanup(r *ResourceRequests, pruner Pruner) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := r.CleanupOldRequests(ctx); err != nil {
		zap.L().Error("Failed to cleanup old requests", zap.Error(err))
	}

	if pruner == nil {
		return
	}

	n, err := pruner.Prune(ctx)
	if err != nil {
		zap.L().Error("Failed to prune rate counters", zap.Error(err))
		return
	}

	zap.L().Debug("Rate counters pruned", zap.Int64("deleted", n))
}

func runWeeklyReport(r *ResourceRequests) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := r.SendWeeklyReport(ctx)
	if err != nil {
		zap.L().Error("Failed to build weekly report", zap.Error(err))
		return
	}

	if !sent {
		zap.L().Warn("Weekly report was not delivered")
	}
}
