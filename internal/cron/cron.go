// Package cron schedules periodic background maintenance such as the idle
// buffer sweep.
package cron

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression or an @every interval
	// spec (e.g. "*/5 * * * *", "@every 30m").
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}
