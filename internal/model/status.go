package model

// Status is the analysis job state reported by the backend's /status endpoint.
// The backend reports all three fields on every poll; a status is terminal
// when Done is true or Error is non-empty.
//
// Design decision: We keep this a small value type rather than adding polling
// behavior here. The job package owns the polling loop; this type only answers
// "should polling stop" so both the runner and its tests share one definition
// of terminal.
type Status struct {
	// Running indicates the backend is currently executing an analysis job.
	Running bool `json:"running"`

	// Done indicates the analysis finished successfully and results are
	// available for fetching.
	Done bool `json:"done"`

	// Error holds the backend's failure message, verbatim, when the
	// analysis ended in an application-level error. Empty otherwise.
	// The backend reports messages in Russian.
	Error string `json:"error,omitempty"`
}

// Terminal reports whether polling should stop for this status.
func (s Status) Terminal() bool {
	return s.Done || s.Error != ""
}

// Failed reports whether the job ended with an application-level error.
func (s Status) Failed() bool {
	return s.Error != ""
}
