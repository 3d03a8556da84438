// Package job implements the analysis job lifecycle: start the backend job,
// poll its status at a fixed interval, and report the terminal outcome.
//
// The runner is the single owner of the job state machine. Re-entry is
// guarded explicitly (a second Run while one is in flight fails fast), and
// cancellation is carried by the context rather than relying on callers to
// stop asking.
package job
