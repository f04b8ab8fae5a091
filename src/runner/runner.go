// Package runner executes external commands with combined output capture and
// fixed-interval retry.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Result is the outcome of a successful invocation.
type Result struct {
	Output   string // combined stdout/stderr of the final attempt, newline-joined
	ExitCode int
	Attempts int
}

// ExecutionError reports a command whose final attempt exited non-zero.
// Output holds only that attempt's output.
type ExecutionError struct {
	Command  string
	ExitCode int
	Output   string
	Attempts int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %q failed with exit status %d after %d attempt(s)", e.Command, e.ExitCode, e.Attempts)
}

// Commander is the single entry point consumers depend on.
type Commander interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithSleep replaces the backoff sleep (primarily for tests).
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithLogger sets the logger used for command lines and streamed output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes invocations relative to a project root.
type Runner struct {
	root   string
	exec   Executor
	sleep  func(context.Context, time.Duration) error
	logger *slog.Logger
}

// New constructs a Runner whose invocations default to root as working directory.
func New(root string, opts ...Option) *Runner {
	r := &Runner{
		root:   root,
		exec:   commandExecutor{},
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv, retrying non-zero exits up to inv.Retry more times.
// Failures to start the process are returned immediately without retry.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	proc := inv.process(r.root)
	attempts := inv.attempts()
	display := inv.String()

	for attempt := 1; ; attempt++ {
		r.logger.Info("$ "+display, "dir", proc.Dir)

		var lines []string
		code, err := r.exec.Run(ctx, proc, func(line string) {
			r.logger.Debug(line)
			lines = append(lines, line)
		})
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", display, err)
		}

		output := strings.Join(lines, "\n")
		if code == 0 {
			return Result{Output: output, ExitCode: 0, Attempts: attempt}, nil
		}
		if attempt >= attempts {
			return Result{Output: output, ExitCode: code, Attempts: attempt}, &ExecutionError{
				Command:  display,
				ExitCode: code,
				Output:   output,
				Attempts: attempt,
			}
		}

		interval := inv.interval()
		r.logger.Warn("command failed, retrying",
			"attempt", fmt.Sprintf("%d/%d", attempt, attempts),
			"command", display,
			"exit_code", code,
			"retry_in", interval,
		)
		if err := r.sleep(ctx, interval); err != nil {
			return Result{}, fmt.Errorf("%s: retry aborted: %w", display, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
