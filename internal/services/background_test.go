package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestTaskRunnerRunsSubmittedTasks(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(context.Background())
	var ran atomic.Int32
	runner.Submit("first", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	runner.Submit("second", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	runner.Wait()

	if ran.Load() != 2 {
		t.Fatalf("expected both tasks to run, got %d", ran.Load())
	}
}

func TestTaskRunnerSwallowsFailures(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(context.Background())
	runner.Submit("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	runner.Submit("after-failure", func(ctx context.Context) error {
		return nil
	})
	// Wait must return even when a task failed; the error is only logged.
	runner.Wait()
}

func TestTaskRunnerTaskContextIsBounded(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(context.Background())
	var hasDeadline atomic.Bool
	runner.Submit("deadline-check", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return nil
	})
	runner.Wait()

	if !hasDeadline.Load() {
		t.Fatal("task context should carry a deadline")
	}
}
