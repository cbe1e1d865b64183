package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/markasset/markasset/internal/config"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/firestore"
	"github.com/markasset/markasset/pkg/security"
	"github.com/markasset/markasset/pkg/session"
	"github.com/markasset/markasset/pkg/storage"
)

// ensureDirectories creates all necessary directories for the application
func ensureDirectories(sqlitePath, fsmDBPath, workspaceDir string) error {
	// Create history database directory
	if sqlitePath != "" {
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return errors.Wrap(err, "failed to create database directory")
		}
	}

	// Create FSM journal directory (only needed for fetch command)
	if fsmDBPath != "" {
		if err := os.MkdirAll(fsmDBPath, 0755); err != nil {
			return errors.Wrap(err, "failed to create FSM directory")
		}
	}

	// Create workspace directory
	if workspaceDir != "" {
		if err := os.MkdirAll(workspaceDir, 0755); err != nil {
			return errors.Wrap(err, "failed to create workspace directory")
		}
	}

	return nil
}

// newSessionManager wires the Firestore store client and session manager.
func newSessionManager(cfg *config.Config, httpClient *http.Client) *session.Manager {
	store := firestore.NewClient(httpClient, cfg.FirestoreURL(), cfg.APIKey, cfg.UserID, cfg.TTL())
	return session.NewManager(store, cfg.CodeLength, cfg.MaxCodeValue)
}

// newFetcher builds the configured blob-store backend.
func newFetcher(ctx context.Context, cfg *config.Config, httpClient *http.Client) (storage.Fetcher, error) {
	validator := security.NewValidator(cfg.MaxFileSize)
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Client(ctx, cfg.S3Bucket, cfg.S3Region, cfg.UserID, validator)
	}
	return storage.NewFirebaseClient(httpClient, cfg.StorageURL(), cfg.UserID, validator), nil
}
