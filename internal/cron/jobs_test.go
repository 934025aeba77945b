package cron

import (
	"context"
	"testing"
)

// stubSweeper returns a fixed eviction count.
type stubSweeper struct {
	evicted int
	calls   int
}

func (s *stubSweeper) Sweep() int {
	s.calls++
	return s.evicted
}

func TestBufferCleanupJobDefaults(t *testing.T) {
	t.Parallel()

	j := &BufferCleanupJob{}
	if got := j.Name(); got != "buffer_cleanup" {
		t.Errorf("Name() = %q, want %q", got, "buffer_cleanup")
	}
	if got := j.Schedule(); got != "@every 30m" {
		t.Errorf("Schedule() = %q, want %q", got, "@every 30m")
	}

	j.ScheduleExpr = "@every 5m"
	if got := j.Schedule(); got != "@every 5m" {
		t.Errorf("Schedule() = %q, want %q", got, "@every 5m")
	}
}

func TestBufferCleanupJobRun(t *testing.T) {
	t.Parallel()

	sweeper := &stubSweeper{evicted: 3}
	j := &BufferCleanupJob{Sweeper: sweeper}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sweeper.calls != 1 {
		t.Errorf("Sweep called %d times, want 1", sweeper.calls)
	}
}

func TestBufferCleanupJobCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := &stubSweeper{}
	if err := (&BufferCleanupJob{Sweeper: sweeper}).Run(ctx); err == nil {
		t.Error("Run() error = nil for cancelled context")
	}
	if sweeper.calls != 0 {
		t.Errorf("Sweep called %d times after cancellation, want 0", sweeper.calls)
	}
}
