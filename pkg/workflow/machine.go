// Package workflow implements the one-shot retrieval pipeline as a durable
// finite state machine: check the session's status, download its files,
// record the outcome. Transient failures are retried by the FSM runtime up
// to a configured ceiling; terminal session states abort the run.
package workflow

import (
	"context"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/history"
	"github.com/markasset/markasset/pkg/session"
	"github.com/markasset/markasset/pkg/storage"
	"github.com/superfly/fsm"
)

// Machine holds dependencies for FSM transitions
type Machine struct {
	sessions   *session.Manager
	fetcher    storage.Fetcher
	history    *history.Repository
	maxRetries int
}

// NewMachine creates a retrieval machine. history may be nil to skip
// outcome recording.
func NewMachine(sessions *session.Manager, fetcher storage.Fetcher, hist *history.Repository, maxRetries int) *Machine {
	return &Machine{
		sessions:   sessions,
		fetcher:    fetcher,
		history:    hist,
		maxRetries: maxRetries,
	}
}

// Register registers the retrieval FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[RetrievalRequest, RetrievalResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[RetrievalRequest, RetrievalResponse](manager, "session-retrieve").
		Start(StateCheckSession, m.handleCheckSession).
		To(StateDownload, m.handleDownload).
		To(StateComplete, m.handleComplete).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register FSM")
	}

	return start, resume, nil
}
