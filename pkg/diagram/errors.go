package diagram

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a diagram does not exist.
var ErrNotFound = errors.New("diagram not found")

// ErrClosed is returned by storage used after Close.
var ErrClosed = errors.New("storage closed")

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // "save", "get", "list", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// CompileError wraps the compiler failure that prevented a save.
type CompileError struct {
	Mode  string
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("diagram does not compile [mode=%s]: %v", e.Mode, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// RetentionError represents a failed prune.
type RetentionError struct {
	RetentionDays int
	MaxRecords    int64
	Cause         error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [days=%d, max_records=%d]: %v", e.RetentionDays, e.MaxRecords, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}
