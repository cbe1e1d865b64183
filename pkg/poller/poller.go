// Package poller drives the background polling loop for a session: observe
// the session's status on a fixed tick until files appear, then pull them
// down and stop. Each polling run owns its loop state exclusively; runs for
// different sessions share nothing but the HTTP transport underneath.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/markasset/markasset/pkg/history"
	"github.com/markasset/markasset/pkg/session"
	"github.com/markasset/markasset/pkg/storage"
)

// Outcome is the terminal state of a polling run.
type Outcome int

const (
	// OutcomeSucceeded means files were downloaded.
	OutcomeSucceeded Outcome = iota
	// OutcomeExpired means the session expired before files were retrieved.
	OutcomeExpired
	// OutcomeNotFound means the session document disappeared or never existed.
	OutcomeNotFound
	// OutcomeErrorBudgetExhausted means too many consecutive observations failed.
	OutcomeErrorBudgetExhausted
	// OutcomeTimedOut means the run hit its wall-clock ceiling.
	OutcomeTimedOut
	// OutcomeCanceled means the caller's context was canceled.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeExpired:
		return "expired"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeErrorBudgetExhausted:
		return "error_budget_exhausted"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is a polling run's terminal report. Downloaded is populated only
// for OutcomeSucceeded.
type Result struct {
	Code       string
	Outcome    Outcome
	Downloaded []string
}

// StatusChecker observes a session's current state.
type StatusChecker interface {
	CheckStatus(ctx context.Context, code string) (session.Status, error)
}

// Poller runs polling loops. It holds no per-run state and may drive any
// number of sessions concurrently.
type Poller struct {
	sessions    StatusChecker
	fetcher     storage.Fetcher
	history     *history.Repository
	interval    time.Duration
	maxDuration time.Duration
	maxErrors   int
}

// New creates a poller. history may be nil to skip outcome recording.
func New(sessions StatusChecker, fetcher storage.Fetcher, hist *history.Repository, interval, maxDuration time.Duration, maxErrors int) *Poller {
	return &Poller{
		sessions:    sessions,
		fetcher:     fetcher,
		history:     hist,
		interval:    interval,
		maxDuration: maxDuration,
		maxErrors:   maxErrors,
	}
}

// Start spawns the polling run for code as a background goroutine and
// returns immediately. The returned channel is buffered and delivers the
// run's terminal Result exactly once; a caller that never reads it leaks
// nothing.
func (p *Poller) Start(ctx context.Context, code, destDir string) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		result := p.run(ctx, code, destDir)
		p.record(result, destDir)
		done <- result
	}()
	return done
}

// Run polls synchronously until a terminal outcome.
func (p *Poller) Run(ctx context.Context, code, destDir string) Result {
	result := p.run(ctx, code, destDir)
	p.record(result, destDir)
	return result
}

func (p *Poller) run(ctx context.Context, code, destDir string) Result {
	slog.Info("polling_started", "code", code, "interval", p.interval, "max_duration", p.maxDuration)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	start := time.Now()
	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			slog.Info("polling_canceled", "code", code)
			return Result{Code: code, Outcome: OutcomeCanceled}
		case <-ticker.C:
		}

		// Wall-clock ceiling first: a hard stop independent of error count.
		if time.Since(start) > p.maxDuration {
			slog.Info("polling_timed_out", "code", code, "elapsed", time.Since(start))
			return Result{Code: code, Outcome: OutcomeTimedOut}
		}

		status, err := p.sessions.CheckStatus(ctx, code)
		if err != nil {
			consecutiveErrors++
			slog.Error("status_check_failed", "code", code, "consecutive_errors", consecutiveErrors, "error", err)
		} else {
			switch status.State {
			case session.StateHasFiles:
				slog.Info("files_available", "code", code, "files", status.Files)
				downloaded, err := storage.FetchAll(ctx, p.fetcher, code, status.Files, destDir)
				if err != nil {
					// Files are known to exist; a failed batch is a
					// transient condition, not an abandonment signal.
					consecutiveErrors++
					slog.Error("download_failed", "code", code, "consecutive_errors", consecutiveErrors, "error", err)
				} else {
					slog.Info("polling_succeeded", "code", code, "downloaded", len(downloaded))
					return Result{Code: code, Outcome: OutcomeSucceeded, Downloaded: downloaded}
				}
			case session.StateWaiting:
				consecutiveErrors = 0
			case session.StateExpired:
				slog.Info("polling_session_expired", "code", code)
				return Result{Code: code, Outcome: OutcomeExpired}
			case session.StateNotFound:
				slog.Info("polling_session_not_found", "code", code)
				return Result{Code: code, Outcome: OutcomeNotFound}
			}
		}

		if consecutiveErrors >= p.maxErrors {
			slog.Error("polling_error_budget_exhausted", "code", code, "consecutive_errors", consecutiveErrors)
			return Result{Code: code, Outcome: OutcomeErrorBudgetExhausted}
		}
	}
}

func (p *Poller) record(result Result, destDir string) {
	if p.history == nil {
		return
	}
	run := &history.Run{
		Code:        result.Code,
		Outcome:     result.Outcome.String(),
		FileCount:   len(result.Downloaded),
		Destination: destDir,
	}
	if err := p.history.Create(run); err != nil {
		slog.Error("history_record_failed", "code", result.Code, "error", err)
	}
}
