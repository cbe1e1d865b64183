package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/history"
	"github.com/markasset/markasset/pkg/session"
	"github.com/markasset/markasset/pkg/storage"
	"github.com/superfly/fsm"
)

// terminalStatusErr maps a non-retrievable session state to the error the
// run should abort with. It returns nil for StateHasFiles.
func terminalStatusErr(status session.Status) error {
	switch status.State {
	case session.StateNotFound:
		return session.ErrNotFound
	case session.StateExpired:
		return session.ErrExpired
	case session.StateWaiting:
		return session.ErrNoFilesYet
	default:
		return nil
	}
}

// handleCheckSession queries the session's status; only HasFiles continues
func (m *Machine) handleCheckSession(ctx context.Context, req *fsm.Request[RetrievalRequest, RetrievalResponse]) (*fsm.Response[RetrievalResponse], error) {
	slog.Info("fsm_state_check_session", "code", req.Msg.Code)

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "code", req.Msg.Code, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	status, err := m.sessions.CheckStatus(ctx, req.Msg.Code)
	if err != nil {
		// Transport failures are retryable.
		slog.Error("status_check_failed", "code", req.Msg.Code, "error", err)
		return nil, errors.Wrap(err, "status check failed")
	}

	if terminalErr := terminalStatusErr(status); terminalErr != nil {
		slog.Info("session_not_retrievable", "code", req.Msg.Code, "state", status.State.String())
		m.recordOutcome(req.Msg.Code, req.Msg.Destination, status.State.String(), 0)
		return nil, fsm.Abort(terminalErr)
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &RetrievalResponse{}
	}
	resp.Files = status.Files

	slog.Info("session_has_files", "code", req.Msg.Code, "file_count", len(resp.Files))
	return fsm.NewResponse(resp), nil
}

// handleDownload pulls every listed file into the destination directory
func (m *Machine) handleDownload(ctx context.Context, req *fsm.Request[RetrievalRequest, RetrievalResponse]) (*fsm.Response[RetrievalResponse], error) {
	slog.Info("fsm_state_download", "code", req.Msg.Code)

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "code", req.Msg.Code, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	downloaded, err := storage.FetchAll(ctx, m.fetcher, req.Msg.Code, resp.Files, req.Msg.Destination)
	if err != nil {
		if errors.Is(err, errors.ErrNoFilesDownloaded) {
			slog.Error("download_batch_empty", "code", req.Msg.Code)
			m.recordOutcome(req.Msg.Code, req.Msg.Destination, "failed", 0)
			return nil, fsm.Abort(err)
		}
		return nil, errors.Wrap(err, "download failed")
	}

	resp.Downloaded = downloaded
	slog.Info("download_complete", "code", req.Msg.Code, "downloaded", len(downloaded))

	return fsm.NewResponse(resp), nil
}

// handleComplete records the outcome and finishes the run
func (m *Machine) handleComplete(ctx context.Context, req *fsm.Request[RetrievalRequest, RetrievalResponse]) (*fsm.Response[RetrievalResponse], error) {
	slog.Info("fsm_state_complete", "code", req.Msg.Code)

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	resp.Outcome = "succeeded"
	m.recordOutcome(req.Msg.Code, req.Msg.Destination, resp.Outcome, len(resp.Downloaded))

	slog.Info("fsm_complete", "code", req.Msg.Code, "downloaded", len(resp.Downloaded))
	return fsm.NewResponse(resp), nil
}

func (m *Machine) recordOutcome(code, destination, outcome string, fileCount int) {
	if m.history == nil {
		return
	}
	run := &history.Run{
		Code:        code,
		Outcome:     outcome,
		FileCount:   fileCount,
		Destination: destination,
	}
	if err := m.history.Create(run); err != nil {
		slog.Error("history_record_failed", "code", code, "error", err)
	}
}
