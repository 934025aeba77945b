package cron

import (
	"context"
	"fmt"
	"log/slog"
)

// Sweeper is the subset of the buffer manager needed by the cleanup job.
// Defined here to avoid a dependency on the manager package.
type Sweeper interface {
	Sweep() int
}

// BufferCleanupJob evicts conversation buffers idle past the manager's TTL.
type BufferCleanupJob struct {
	Sweeper      Sweeper
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@every 30m"
}

// Compile-time interface check.
var _ Job = (*BufferCleanupJob)(nil)

// Name implements Job.
func (j *BufferCleanupJob) Name() string {
	return "buffer_cleanup"
}

// Schedule implements Job.
func (j *BufferCleanupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@every 30m"
}

// Run performs one sweep pass.
func (j *BufferCleanupJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: buffer cleanup cancelled: %w", ctx.Err())
	}
	evicted := j.Sweeper.Sweep()
	if evicted > 0 && j.Logger != nil {
		j.Logger.Info("cron: evicted idle conversation buffers", "count", evicted)
	}
	return nil
}
