// Package parallel runs independent pipeline stages concurrently and joins
// on all of them before reporting.
package parallel

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is a named unit of concurrent work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome records how a task finished.
type Outcome struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Options bounds and tunes a run.
type Options struct {
	// Limit caps concurrently running tasks; <= 0 means one worker per task.
	Limit int
	// FailFast cancels the context handed to siblings once a task fails.
	// Run still waits for every task either way.
	FailFast bool
}

// Run executes tasks concurrently and returns only after every task has
// finished. The returned error is the first failure observed, prefixed with
// the task name. Outcomes are in submission order.
func Run(ctx context.Context, opts Options, tasks []Task) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tasks))
	if len(tasks) == 0 {
		return outcomes, nil
	}

	g := &errgroup.Group{}
	taskCtx := ctx
	if opts.FailFast {
		g, taskCtx = errgroup.WithContext(ctx)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = len(tasks)
	}
	g.SetLimit(limit)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			start := time.Now()
			err := t.Run(taskCtx)
			outcomes[i] = Outcome{Name: t.Name, Err: err, Duration: time.Since(start)}
			if err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return outcomes, err
}
