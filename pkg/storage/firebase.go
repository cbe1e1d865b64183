package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/security"
)

// FirebaseClient fetches blobs from Firebase Storage. Objects live under
// uploads/{user}/{code}/{filename}, path-escaped into a single URL segment
// as the Storage object API requires.
type FirebaseClient struct {
	http      *http.Client
	baseURL   string
	userID    string
	validator *security.Validator
}

// NewFirebaseClient creates a fetcher for the given Storage objects root,
// e.g. https://firebasestorage.googleapis.com/v0/b/{project}.appspot.com/o.
func NewFirebaseClient(httpClient *http.Client, baseURL, userID string, validator *security.Validator) *FirebaseClient {
	return &FirebaseClient{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userID:    userID,
		validator: validator,
	}
}

func (c *FirebaseClient) objectURL(code, filename string) string {
	object := url.PathEscape(path.Join("uploads", c.userID, code, filename))
	return c.baseURL + "/" + object + "?alt=media"
}

// Fetch downloads one blob and writes it to destDir/filename, returning the
// local path.
func (c *FirebaseClient) Fetch(ctx context.Context, code, filename, destDir string) (string, error) {
	if err := c.validator.ValidateFilename(filename); err != nil {
		return "", err
	}

	slog.Info("firebase_fetch_start", "code", code, "filename", filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(code, filename), nil)
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &errors.TransportError{Op: "fetch " + filename, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &errors.TransportError{Op: "fetch " + filename, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read blob body")
	}
	if err := c.validator.ValidateFileSize(int64(len(data))); err != nil {
		return "", err
	}

	localPath, err := writeFile(destDir, filename, data)
	if err != nil {
		return "", err
	}

	slog.Info("firebase_fetch_complete", "code", code, "filename", filename, "size", len(data), "local_path", localPath)
	return localPath, nil
}
