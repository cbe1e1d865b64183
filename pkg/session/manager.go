// Package session owns code generation and session status classification.
// The manager never mutates a session after creating it; state transitions
// are driven entirely by the uploading client and by wall-clock progression.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/firestore"
)

var (
	// ErrCodeCollision means the freshly minted code already has a live
	// session document. The caller decides whether to mint again.
	ErrCodeCollision = errors.New("session code already exists, try again")

	// ErrNotFound reports a manual download attempt against an absent session.
	ErrNotFound = errors.New("session not found")

	// ErrExpired reports a manual download attempt against an expired session.
	ErrExpired = errors.New("session has expired")

	// ErrNoFilesYet reports a manual download attempt before any upload landed.
	ErrNoFilesYet = errors.New("no files available for this session yet")
)

// Store is the document-store surface the manager needs.
type Store interface {
	IncrementCounter(ctx context.Context) (int, error)
	CreateSession(ctx context.Context, code string) (*firestore.Session, error)
	GetSession(ctx context.Context, code string) (*firestore.Session, error)
}

// Manager mints session codes and answers status queries. It is stateless
// and reusable across sessions.
type Manager struct {
	store        Store
	codeLength   int
	maxCodeValue int
}

// NewManager creates a session manager. Codes are codeLength decimal digits,
// derived from the shared counter modulo maxCodeValue+1.
func NewManager(store Store, codeLength, maxCodeValue int) *Manager {
	return &Manager{
		store:        store,
		codeLength:   codeLength,
		maxCodeValue: maxCodeValue,
	}
}

// FormatCode reduces a counter value to a fixed-width session code.
func (m *Manager) FormatCode(counterValue int) string {
	return fmt.Sprintf("%0*d", m.codeLength, counterValue%(m.maxCodeValue+1))
}

// GenerateCode mints a fresh code from the shared counter and creates its
// session document. Because the counter wraps, the minted code can collide
// with a live session; the store's conflict signal is the correctness
// backstop, surfaced as ErrCodeCollision.
func (m *Manager) GenerateCode(ctx context.Context) (string, error) {
	counterValue, err := m.store.IncrementCounter(ctx)
	if err != nil {
		return "", errors.Wrap(err, "increment session counter")
	}

	code := m.FormatCode(counterValue)
	slog.Info("code_minted", "code", code, "counter_value", counterValue)

	if _, err := m.store.CreateSession(ctx, code); err != nil {
		if errors.Is(err, errors.ErrConflict) {
			slog.Warn("code_collision", "code", code)
			return "", fmt.Errorf("%w: code %s", ErrCodeCollision, code)
		}
		return "", errors.Wrap(err, "create session")
	}

	return code, nil
}

// CheckStatus reads the session for code and classifies it into exactly one
// of the four states. Expiry dominates file presence.
func (m *Manager) CheckStatus(ctx context.Context, code string) (Status, error) {
	sess, err := m.store.GetSession(ctx, code)
	if err != nil {
		return Status{}, errors.Wrap(err, "get session")
	}
	if sess == nil {
		return Status{State: StateNotFound}, nil
	}

	switch {
	case sess.ExpiresAt.Before(time.Now().UTC()):
		return Status{State: StateExpired}, nil
	case len(sess.Files) == 0:
		return Status{State: StateWaiting}, nil
	default:
		return Status{State: StateHasFiles, Files: sess.Files}, nil
	}
}
