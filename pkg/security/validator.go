// Package security validates filenames and sizes coming from the remote
// session before anything is written into the local workspace.
package security

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Validator guards against hostile filenames and oversized downloads. The
// filename list in a session document is written by the uploading client
// and is not trusted.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator. maxFileSize of zero disables the size check.
func NewValidator(maxFileSize int64) *Validator {
	slog.Info("security_validator_init", "max_file_size_mb", maxFileSize/1024/1024)
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFilename checks an uploaded filename before it is joined onto the
// destination directory.
func (v *Validator) ValidateFilename(name string) error {
	if name == "" {
		slog.Error("security_filename_validation_failed", "reason", "empty")
		return fmt.Errorf("security: empty filename")
	}

	if filepath.IsAbs(name) {
		slog.Error("security_filename_validation_failed", "filename", name, "reason", "absolute_path")
		return fmt.Errorf("security: absolute path not allowed: %s", name)
	}

	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		slog.Error("security_filename_validation_failed", "filename", name, "reason", "path_traversal")
		return fmt.Errorf("security: path traversal detected: %s", name)
	}

	return nil
}

// ValidateFileSize checks a downloaded blob's size against the limit.
func (v *Validator) ValidateFileSize(size int64) error {
	if v.maxFileSize > 0 && size > v.maxFileSize {
		slog.Error("security_file_size_exceeded",
			"file_size_mb", size/1024/1024,
			"max_file_size_mb", v.maxFileSize/1024/1024)
		return fmt.Errorf("security: file size %d exceeds limit %d", size, v.maxFileSize)
	}
	return nil
}
