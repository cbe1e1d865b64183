// Package storage fetches uploaded session blobs into a local directory.
// Two backends are provided: Firebase Storage over its REST API (the
// default) and S3 for deployments that point the uploader at a bucket.
package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/markasset/markasset/pkg/errors"
)

// Fetcher downloads a single named upload for a session and writes it under
// destDir, returning the final local path.
type Fetcher interface {
	Fetch(ctx context.Context, code, filename, destDir string) (string, error)
}

// FetchAll downloads each filename independently, in order. A failure on one
// file is logged and does not abort the batch; the remaining filenames are
// still attempted. It fails with errors.ErrNoFilesDownloaded only when zero
// files succeed, otherwise it returns the successful subset.
func FetchAll(ctx context.Context, fetcher Fetcher, code string, filenames []string, destDir string) ([]string, error) {
	var downloaded []string
	for _, filename := range filenames {
		localPath, err := fetcher.Fetch(ctx, code, filename, destDir)
		if err != nil {
			slog.Error("fetch_failed", "code", code, "filename", filename, "error", err)
			continue
		}
		downloaded = append(downloaded, localPath)
	}

	if len(downloaded) == 0 {
		slog.Error("fetch_batch_empty", "code", code, "requested", len(filenames))
		return nil, errors.ErrNoFilesDownloaded
	}

	slog.Info("fetch_batch_complete", "code", code, "downloaded", len(downloaded), "requested", len(filenames))
	return downloaded, nil
}

// writeFile writes a downloaded blob to destDir/filename, creating the
// destination directory as needed and overwriting any existing file.
func writeFile(destDir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Wrap(err, "create destination directory")
	}

	localPath := filepath.Join(destDir, filename)
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return "", errors.Wrap(err, "write file")
	}
	return localPath, nil
}
