// Package client is the caller-facing surface: mint a code and poll in the
// background, query a session's status, or pull its files on demand.
package client

import (
	"context"

	"github.com/markasset/markasset/pkg/poller"
	"github.com/markasset/markasset/pkg/session"
	"github.com/markasset/markasset/pkg/storage"
)

// Client binds the session manager, blob fetcher and poller together.
type Client struct {
	sessions *session.Manager
	fetcher  storage.Fetcher
	poller   *poller.Poller
}

// New creates a client.
func New(sessions *session.Manager, fetcher storage.Fetcher, p *poller.Poller) *Client {
	return &Client{
		sessions: sessions,
		fetcher:  fetcher,
		poller:   p,
	}
}

// StartSession mints a new session code and begins polling for uploads in
// the background. It returns the code immediately, without blocking on the
// polling duration, together with a buffered channel that delivers the
// run's terminal result. A session.ErrCodeCollision error means the minted
// code is taken; the caller decides whether to invoke StartSession again.
func (c *Client) StartSession(ctx context.Context, workspaceDir string) (string, <-chan poller.Result, error) {
	code, err := c.sessions.GenerateCode(ctx)
	if err != nil {
		return "", nil, err
	}
	done := c.poller.Start(ctx, code, workspaceDir)
	return code, done, nil
}

// CheckSession is the manual, synchronous status query.
func (c *Client) CheckSession(ctx context.Context, code string) (session.Status, error) {
	return c.sessions.CheckStatus(ctx, code)
}

// DownloadFiles is the manual, one-shot retrieval: a single status check
// followed by a single download batch. It fails unless the session
// currently has files.
func (c *Client) DownloadFiles(ctx context.Context, code, workspaceDir string) ([]string, error) {
	status, err := c.sessions.CheckStatus(ctx, code)
	if err != nil {
		return nil, err
	}

	switch status.State {
	case session.StateHasFiles:
		return storage.FetchAll(ctx, c.fetcher, code, status.Files, workspaceDir)
	case session.StateWaiting:
		return nil, session.ErrNoFilesYet
	case session.StateExpired:
		return nil, session.ErrExpired
	default:
		return nil, session.ErrNotFound
	}
}
