package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidBaseURL is returned when the backend base URL is empty or
	// not an absolute http/https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is not
	// positive. A zero interval would hammer the backend's /status endpoint.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidPollTimeout is returned when the poll timeout is negative
	// or shorter than a single poll interval.
	ErrInvalidPollTimeout = errors.New("invalid poll timeout: must be zero or at least one poll interval")

	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	// Use 0 to allow immediate restarts after a failure.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
