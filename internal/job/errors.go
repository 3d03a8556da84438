package job

import "errors"

var (
	// ErrAlreadyRunning is returned when Run is called while another run
	// is still in flight on the same runner.
	ErrAlreadyRunning = errors.New("analysis already running")

	// ErrCoolingDown is returned when Run is called before the retry delay
	// after a failed run has elapsed.
	ErrCoolingDown = errors.New("analysis recently failed: retry delay has not elapsed")

	// ErrPollTimeout is returned when a job does not reach a terminal
	// status within the poll timeout.
	ErrPollTimeout = errors.New("analysis did not finish within the poll timeout")
)

// AnalysisError is an application-level failure reported by the backend's
// status endpoint. The message is surfaced to the user verbatim.
type AnalysisError struct {
	// Message is the backend's error string, unmodified.
	Message string
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return e.Message
}
