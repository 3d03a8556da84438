package job

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trafficlens/trafficlens/internal/model"
)

// fakeBackend scripts StartAnalysis and Status responses for runner tests.
type fakeBackend struct {
	mu       sync.Mutex
	startErr error
	statuses []model.Status
	idx      int
}

func (f *fakeBackend) StartAnalysis(_ context.Context) error {
	return f.startErr
}

// Status returns the scripted statuses in order, repeating the last one.
func (f *fakeBackend) Status(_ context.Context) (model.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.statuses) == 0 {
		return model.Status{Running: true}, nil
	}
	status := f.statuses[f.idx]
	if f.idx < len(f.statuses)-1 {
		f.idx++
	}
	return status, nil
}

// TestRunnerCompletesOnce verifies that a poll sequence ending in done:true
// produces exactly one terminal result and releases the runner immediately.
func TestRunnerCompletesOnce(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		statuses: []model.Status{
			{Running: true},
			{Running: true},
			{Done: true},
		},
	}

	var progress []model.Status
	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithProgress(func(s model.Status) { progress = append(progress, s) }),
	)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.Status.Done {
		t.Errorf("terminal status = %+v, want done", result.Status)
	}
	if result.Polls != 3 {
		t.Errorf("Polls = %d, want 3", result.Polls)
	}
	if len(progress) != 3 {
		t.Errorf("progress callbacks = %d, want 3", len(progress))
	}
	if runner.Running() {
		t.Error("runner still marked running after completion")
	}

	// A successful run must not lock the runner; the next run starts
	// immediately.
	backend.idx = 0
	if _, err := runner.Run(context.Background()); err != nil {
		t.Errorf("second Run after success: %v", err)
	}
}

// TestRunnerSurfacesBackendError verifies that a status error is surfaced
// verbatim as *AnalysisError.
func TestRunnerSurfacesBackendError(t *testing.T) {
	t.Parallel()

	const message = "Файл данных не найден: data/combined_data.h5"

	backend := &fakeBackend{
		statuses: []model.Status{
			{Running: true},
			{Error: message},
		},
	}

	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithRetryDelay(0),
	)

	_, err := runner.Run(context.Background())

	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected *AnalysisError, got %v", err)
	}
	if analysisErr.Message != message {
		t.Errorf("Message = %q, want backend error verbatim", analysisErr.Message)
	}
}

// TestRunnerStartFailure verifies the start-failure message prefix and that
// the runner becomes usable again once the retry delay elapses.
func TestRunnerStartFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{startErr: errors.New("backend returned HTTP 502")}
	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithRetryDelay(20*time.Millisecond),
	)

	_, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected start failure")
	}
	if !strings.Contains(err.Error(), "Не удалось запустить анализ") {
		t.Errorf("error = %q, want start failure message", err)
	}

	// Within the retry delay the runner stays locked.
	if _, err := runner.Run(context.Background()); !errors.Is(err, ErrCoolingDown) {
		t.Errorf("expected ErrCoolingDown during retry delay, got %v", err)
	}

	// After the delay the runner accepts a new start.
	time.Sleep(30 * time.Millisecond)
	backend.startErr = nil
	backend.statuses = []model.Status{{Done: true}}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Errorf("Run after retry delay: %v", err)
	}
}

// TestRunnerRejectsReentry verifies that a second Run while one is in flight
// fails with ErrAlreadyRunning.
func TestRunnerRejectsReentry(t *testing.T) {
	t.Parallel()

	firstPoll := make(chan struct{})
	var once sync.Once

	backend := &fakeBackend{} // always running
	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithProgress(func(model.Status) { once.Do(func() { close(firstPoll) }) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx)
		done <- err
	}()

	<-firstPoll
	if _, err := runner.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from first run, got %v", err)
	}
}

// TestRunnerPollTimeout verifies the poll budget.
func TestRunnerPollTimeout(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{} // never terminal
	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithPollTimeout(20*time.Millisecond),
		WithRetryDelay(0),
	)

	_, err := runner.Run(context.Background())
	if !errors.Is(err, ErrPollTimeout) {
		t.Errorf("expected ErrPollTimeout, got %v", err)
	}
}

// TestRunnerPollFailure verifies that a transport failure during polling
// aborts the run with a wrapped error.
func TestRunnerPollFailure(t *testing.T) {
	t.Parallel()

	backend := &failingStatusBackend{}
	runner := NewRunner(backend,
		WithPollInterval(time.Millisecond),
		WithRetryDelay(0),
	)

	_, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status poll failed") {
		t.Errorf("expected wrapped poll failure, got %v", err)
	}
}

// failingStatusBackend starts fine but fails every status poll.
type failingStatusBackend struct{}

func (f *failingStatusBackend) StartAnalysis(_ context.Context) error {
	return nil
}

func (f *failingStatusBackend) Status(_ context.Context) (model.Status, error) {
	return model.Status{}, errors.New("connection refused")
}
