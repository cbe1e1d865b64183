package poller

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/session"
)

type step struct {
	status session.Status
	err    error
}

// scriptedChecker replays a fixed sequence of observations; the final step
// repeats once the script runs out.
type scriptedChecker struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (c *scriptedChecker) CheckStatus(ctx context.Context, code string) (session.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i >= len(c.steps) {
		i = len(c.steps) - 1
	}
	return c.steps[i].status, c.steps[i].err
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, code, filename, destDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(destDir, filename), nil
}

func newTestPoller(checker StatusChecker, fetcher *fakeFetcher, maxDuration time.Duration, maxErrors int) *Poller {
	return New(checker, fetcher, nil, time.Millisecond, maxDuration, maxErrors)
}

func TestRun_SucceedsAfterTransientErrors(t *testing.T) {
	// Two consecutive errors never reach a ceiling of 10 and do not
	// prevent the later HasFiles observation from succeeding.
	checker := &scriptedChecker{steps: []step{
		{status: session.Status{State: session.StateWaiting}},
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{status: session.Status{State: session.StateHasFiles, Files: []string{"photo.jpg"}}},
	}}
	p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

	result := p.Run(context.Background(), "042", "/tmp/ws")

	if result.Outcome != OutcomeSucceeded {
		t.Fatalf("expected Succeeded, got %s", result.Outcome)
	}
	if len(result.Downloaded) != 1 || result.Downloaded[0] != "/tmp/ws/photo.jpg" {
		t.Errorf("unexpected downloads: %v", result.Downloaded)
	}
	if got := checker.callCount(); got != 4 {
		t.Errorf("expected 4 status checks, got %d", got)
	}
}

func TestRun_ErrorBudgetExhausted(t *testing.T) {
	checker := &scriptedChecker{steps: []step{
		{err: errors.New("connection refused")},
	}}
	p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

	result := p.Run(context.Background(), "042", "/tmp/ws")

	if result.Outcome != OutcomeErrorBudgetExhausted {
		t.Fatalf("expected ErrorBudgetExhausted, got %s", result.Outcome)
	}
	if got := checker.callCount(); got != 10 {
		t.Errorf("expected exactly 10 status checks, got %d", got)
	}
}

func TestRun_WaitingResetsErrorBudget(t *testing.T) {
	// Nine errors, a Waiting observation, then nine more errors: the reset
	// keeps the run under a ceiling of 10 until the files arrive.
	var steps []step
	for i := 0; i < 9; i++ {
		steps = append(steps, step{err: errors.New("connection refused")})
	}
	steps = append(steps, step{status: session.Status{State: session.StateWaiting}})
	for i := 0; i < 9; i++ {
		steps = append(steps, step{err: errors.New("connection refused")})
	}
	steps = append(steps, step{status: session.Status{State: session.StateHasFiles, Files: []string{"a.jpg"}}})

	checker := &scriptedChecker{steps: steps}
	p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

	result := p.Run(context.Background(), "042", "/tmp/ws")

	if result.Outcome != OutcomeSucceeded {
		t.Fatalf("expected Succeeded, got %s", result.Outcome)
	}
	if got := checker.callCount(); got != 20 {
		t.Errorf("expected 20 status checks, got %d", got)
	}
}

func TestRun_TimedOut(t *testing.T) {
	// The wall-clock ceiling stops the run before any status check.
	checker := &scriptedChecker{steps: []step{
		{status: session.Status{State: session.StateWaiting}},
	}}
	p := newTestPoller(checker, &fakeFetcher{}, 0, 10)

	result := p.Run(context.Background(), "042", "/tmp/ws")

	if result.Outcome != OutcomeTimedOut {
		t.Fatalf("expected TimedOut, got %s", result.Outcome)
	}
	if got := checker.callCount(); got != 0 {
		t.Errorf("expected no status checks after the ceiling, got %d", got)
	}
}

func TestRun_TerminalStates(t *testing.T) {
	tests := []struct {
		name    string
		state   session.State
		outcome Outcome
	}{
		{"expired", session.StateExpired, OutcomeExpired},
		{"not found", session.StateNotFound, OutcomeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &scriptedChecker{steps: []step{
				{status: session.Status{State: tt.state}},
			}}
			p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

			result := p.Run(context.Background(), "042", "/tmp/ws")

			if result.Outcome != tt.outcome {
				t.Errorf("expected %s, got %s", tt.outcome, result.Outcome)
			}
			if got := checker.callCount(); got != 1 {
				t.Errorf("terminal states are not retried, got %d checks", got)
			}
		})
	}
}

func TestRun_DownloadFailuresCountTowardBudget(t *testing.T) {
	// While files are known to exist a failed batch keeps the session
	// alive, but each failure burns error budget.
	checker := &scriptedChecker{steps: []step{
		{status: session.Status{State: session.StateHasFiles, Files: []string{"photo.jpg"}}},
	}}
	fetcher := &fakeFetcher{err: errors.New("storage unavailable")}
	p := newTestPoller(checker, fetcher, time.Minute, 3)

	result := p.Run(context.Background(), "042", "/tmp/ws")

	if result.Outcome != OutcomeErrorBudgetExhausted {
		t.Fatalf("expected ErrorBudgetExhausted, got %s", result.Outcome)
	}
	if got := checker.callCount(); got != 3 {
		t.Errorf("expected 3 download attempts, got %d", got)
	}
}

func TestStart_ReturnsImmediately(t *testing.T) {
	checker := &scriptedChecker{steps: []step{
		{status: session.Status{State: session.StateHasFiles, Files: []string{"photo.jpg"}}},
	}}
	p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

	done := p.Start(context.Background(), "042", "/tmp/ws")

	select {
	case result := <-done:
		if result.Outcome != OutcomeSucceeded {
			t.Errorf("expected Succeeded, got %s", result.Outcome)
		}
		if result.Code != "042" {
			t.Errorf("expected code 042, got %s", result.Code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("polling run never delivered a result")
	}
}

func TestRun_Canceled(t *testing.T) {
	checker := &scriptedChecker{steps: []step{
		{status: session.Status{State: session.StateWaiting}},
	}}
	p := newTestPoller(checker, &fakeFetcher{}, time.Minute, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := p.Run(ctx, "042", "/tmp/ws")
	if result.Outcome != OutcomeCanceled {
		t.Errorf("expected Canceled, got %s", result.Outcome)
	}
}
