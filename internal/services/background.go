package services

import (
	"context"
	"log"
	"sync"
	"time"
)

const backgroundTaskTimeout = 2 * time.Minute

// TaskRunner makes the fire-and-forget pattern explicit: Submit returns
// immediately, the task runs on its own goroutine with its own deadline, and
// a failure is logged, never reported back. Callers that need completion
// (shutdown, tests) use Wait.
type TaskRunner struct {
	base context.Context
	wg   sync.WaitGroup
}

func NewTaskRunner(base context.Context) *TaskRunner {
	if base == nil {
		base = context.Background()
	}
	return &TaskRunner{base: base}
}

func (runner *TaskRunner) Submit(name string, task func(context.Context) error) {
	runner.wg.Add(1)
	go func() {
		defer runner.wg.Done()

		ctx, cancel := context.WithTimeout(runner.base, backgroundTaskTimeout)
		defer cancel()

		if err := task(ctx); err != nil {
			log.Printf("background task %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until every submitted task has finished.
func (runner *TaskRunner) Wait() {
	runner.wg.Wait()
}
