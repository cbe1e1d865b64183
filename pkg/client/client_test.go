package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/firestore"
	"github.com/markasset/markasset/pkg/poller"
	"github.com/markasset/markasset/pkg/session"
)

type fakeStore struct {
	counterValue int
	session      *firestore.Session
}

func (s *fakeStore) IncrementCounter(ctx context.Context) (int, error) {
	return s.counterValue, nil
}

func (s *fakeStore) CreateSession(ctx context.Context, code string) (*firestore.Session, error) {
	return &firestore.Session{Code: code}, nil
}

func (s *fakeStore) GetSession(ctx context.Context, code string) (*firestore.Session, error) {
	return s.session, nil
}

type fakeFetcher struct{}

func (f *fakeFetcher) Fetch(ctx context.Context, code, filename, destDir string) (string, error) {
	return filepath.Join(destDir, filename), nil
}

func newTestClient(store *fakeStore) *Client {
	sessions := session.NewManager(store, 3, 999)
	fetcher := &fakeFetcher{}
	p := poller.New(sessions, fetcher, nil, time.Millisecond, time.Minute, 10)
	return New(sessions, fetcher, p)
}

func TestStartSession(t *testing.T) {
	store := &fakeStore{
		counterValue: 7,
		session: &firestore.Session{
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			Files:     []string{"photo.jpg"},
		},
	}
	c := newTestClient(store)

	code, done, err := c.StartSession(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if code != "007" {
		t.Errorf("expected code 007, got %s", code)
	}

	select {
	case result := <-done:
		if result.Outcome != poller.OutcomeSucceeded {
			t.Errorf("expected Succeeded, got %s", result.Outcome)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("polling run never delivered a result")
	}
}

func TestDownloadFiles(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		session *firestore.Session
		wantErr error
	}{
		{"absent session", nil, session.ErrNotFound},
		{"expired session", &firestore.Session{ExpiresAt: now.Add(-time.Minute)}, session.ErrExpired},
		{"no uploads yet", &firestore.Session{ExpiresAt: now.Add(time.Hour)}, session.ErrNoFilesYet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeStore{session: tt.session})

			_, err := c.DownloadFiles(context.Background(), "042", t.TempDir())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDownloadFiles_HasFiles(t *testing.T) {
	store := &fakeStore{session: &firestore.Session{
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Files:     []string{"photo.jpg", "scan.pdf"},
	}}
	c := newTestClient(store)

	destDir := t.TempDir()
	paths, err := c.DownloadFiles(context.Background(), "042", destDir)
	if err != nil {
		t.Fatalf("DownloadFiles failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}
	if paths[0] != filepath.Join(destDir, "photo.jpg") {
		t.Errorf("unexpected first path: %s", paths[0])
	}
}
