package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trafficlens/trafficlens/internal/model"
)

// startFailureMessage prefixes errors from a failed job start.
// The backend and its operators speak Russian; this matches the message the
// dashboard shows for the same failure.
const startFailureMessage = "Не удалось запустить анализ"

// Backend is the subset of the API client the runner needs.
// It is an interface so tests can script status sequences without a server.
type Backend interface {
	// StartAnalysis asks the backend to start an analysis job.
	StartAnalysis(ctx context.Context) error

	// Status fetches the current job state.
	Status(ctx context.Context) (model.Status, error)
}

// Result describes a run that reached done:true.
type Result struct {
	// Status is the terminal status as reported by the backend.
	Status model.Status

	// Polls is the number of status requests issued.
	Polls int

	// Elapsed is the wall time from job start to the terminal status.
	Elapsed time.Duration
}

// Runner drives one analysis job at a time through its lifecycle.
//
// Design decision: The runner owns an explicit busy flag instead of trusting
// callers not to start twice. The dashboard this replaces only disabled its
// start button while polling, which left a re-entry window if disabling
// failed; the guard here makes double starts fail deterministically.
type Runner struct {
	// backend performs the actual HTTP calls.
	backend Backend

	// interval is the fixed delay between status polls.
	interval time.Duration

	// pollTimeout caps the total polling time per run. Zero means poll
	// until the context is cancelled.
	pollTimeout time.Duration

	// retryDelay is how long the runner stays locked after a failed run.
	retryDelay time.Duration

	// onProgress, if set, is called with every polled status.
	onProgress func(model.Status)

	// logger is used for structured logging.
	logger *slog.Logger

	// mu guards busy and lockedUntil.
	mu          sync.Mutex
	busy        bool
	lockedUntil time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithPollTimeout caps the total polling time per run.
// Zero means poll until the context is cancelled.
func WithPollTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.pollTimeout = d
	}
}

// WithRetryDelay sets how long the runner refuses new runs after a failure.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.retryDelay = d
		}
	}
}

// WithProgress registers a callback invoked with every polled status.
func WithProgress(fn func(model.Status)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner for the given backend.
func NewRunner(backend Backend, opts ...Option) *Runner {
	r := &Runner{
		backend:    backend,
		interval:   2 * time.Second,
		retryDelay: 3 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Running reports whether a run is currently in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Run starts an analysis job and polls until it reaches a terminal status,
// the poll budget is exhausted, or ctx is cancelled.
//
// On success it returns the terminal result exactly once. On failure the
// backend's message is returned verbatim as *AnalysisError, and the runner
// refuses new runs until the retry delay has elapsed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}

	started := time.Now()

	if err := r.backend.StartAnalysis(ctx); err != nil {
		r.release(false)
		return nil, fmt.Errorf("%s: %w", startFailureMessage, err)
	}

	r.logger.Info("analysis started", "pollInterval", r.interval)

	result, err := r.poll(ctx, started)
	r.release(err == nil)
	return result, err
}

// poll drives the fixed-interval status loop until a terminal status.
func (r *Runner) poll(ctx context.Context, started time.Time) (*Result, error) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// A separate timer, not context.WithTimeout, so a poll budget overrun
	// is distinguishable from a user cancellation.
	var deadline <-chan time.Time
	if r.pollTimeout > 0 {
		timer := time.NewTimer(r.pollTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	polls := 0
	for {
		select {
		case <-ctx.Done():
			r.logger.Warn("polling cancelled", "polls", polls, "reason", ctx.Err())
			return nil, ctx.Err()

		case <-deadline:
			r.logger.Warn("poll budget exhausted", "polls", polls, "timeout", r.pollTimeout)
			return nil, ErrPollTimeout

		case <-ticker.C:
			status, err := r.backend.Status(ctx)
			if err != nil {
				return nil, fmt.Errorf("status poll failed: %w", err)
			}
			polls++

			if r.onProgress != nil {
				r.onProgress(status)
			}

			if status.Failed() {
				r.logger.Error("analysis failed", "polls", polls, "error", status.Error)
				return nil, &AnalysisError{Message: status.Error}
			}

			if status.Done {
				elapsed := time.Since(started)
				r.logger.Info("analysis completed", "polls", polls, "elapsed", elapsed)
				return &Result{Status: status, Polls: polls, Elapsed: elapsed}, nil
			}

			r.logger.Debug("poll tick", "polls", polls, "running", status.Running)
		}
	}
}

// acquire takes the run guard or reports why it cannot.
func (r *Runner) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.busy {
		return ErrAlreadyRunning
	}
	if time.Now().Before(r.lockedUntil) {
		return ErrCoolingDown
	}

	r.busy = true
	return nil
}

// release frees the run guard. Failed runs keep the runner locked for the
// retry delay so a broken backend is not hammered with restarts.
func (r *Runner) release(succeeded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.busy = false
	if !succeeded {
		r.lockedUntil = time.Now().Add(r.retryDelay)
	}
}
