// Package errors provides error wrapping utilities and the error taxonomy
// shared by the remote store and blob clients.
package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context information.
// If err is nil, it returns nil without wrapping.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// New returns an error with the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

var (
	// ErrConflict indicates the remote store reported that a document
	// with the same path already exists.
	ErrConflict = errors.New("document already exists")

	// ErrNoFilesDownloaded indicates that every file in a download batch failed.
	ErrNoFilesDownloaded = errors.New("no files were successfully downloaded")
)

// TransportError is a non-success HTTP response or a network-level failure
// from one of the remote stores.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
