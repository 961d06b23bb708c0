package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrUnsupportedFileType is returned by the dispatcher before any store
	// I/O when the declared file type has no registered adapter.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	ErrNotFound = errors.New("resource not found")
)

// ExtractionError means a document could not be opened or parsed at all.
// Partial per-page/per-sheet failures degrade to empty contribution instead.
type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// StoreError wraps a connection, lock, or SQL failure.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// SerializationError wraps a JSON encode/decode failure of a table record's
// content document.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serializing table content: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// ExportError means the export destination could not be written.
type ExportError struct {
	Destination string
	Cause       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting to %s: %v", e.Destination, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

// WrapError adds context to an error, preserving the cause chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
