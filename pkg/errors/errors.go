// Package errors provides error wrapping utilities for context-aware error messages
// and the error kinds shared by the recipe store and its consumers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNotFound signals that no recipe matched a lookup. The store reports absence
// as a nil record; callers that need an error value for it use this sentinel.
var ErrNotFound = stderrors.New("recipe not found")

// StorageIOError reports that the persistence backend could not complete an operation.
type StorageIOError struct {
	Op  string
	Err error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}

// Wrap wraps an error with additional context information.
// If err is nil, it returns nil without wrapping.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// StorageIO wraps a backend failure for op as a StorageIOError.
// If err is nil, it returns nil.
func StorageIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageIOError{Op: op, Err: err}
}

// IsStorageIO reports whether err is, or wraps, a StorageIOError.
func IsStorageIO(err error) bool {
	var sErr *StorageIOError
	return stderrors.As(err, &sErr)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
