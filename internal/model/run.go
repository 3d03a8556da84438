package model

import (
	"time"

	"github.com/google/uuid"
)

// Run records one analysis run for the local history database.
// It captures the outcome and the statistics snapshot so past runs can be
// listed and compared without the backend being reachable.
type Run struct {
	// ID is a client-generated UUID identifying this run.
	ID string `json:"id"`

	// BaseURL is the backend the run was executed against.
	BaseURL string `json:"base_url"`

	// StartedAt is when the job start request was issued.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time from job start until the terminal status.
	Duration time.Duration `json:"duration"`

	// Done indicates the run reached done:true.
	Done bool `json:"done"`

	// Error holds the backend failure message for runs that ended in error.
	Error string `json:"error,omitempty"`

	// Statistics is the metrics snapshot fetched after completion.
	// Nil for failed runs or when the stats fetch itself failed.
	Statistics *Statistics `json:"statistics,omitempty"`
}

// NewRun creates a Run for the given backend with a fresh ID and the
// start time set to now.
func NewRun(baseURL string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		BaseURL:   baseURL,
		StartedAt: time.Now().UTC(),
	}
}

// Outcome returns a short human-readable outcome label for run listings.
func (r *Run) Outcome() string {
	switch {
	case r.Error != "":
		return "failed"
	case r.Done:
		return "completed"
	default:
		return "interrupted"
	}
}
