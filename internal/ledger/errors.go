package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// StorageFailureMessage is what users are shown when a flush fails.
const StorageFailureMessage = "Failed to save data. Storage might be full."

// ValidationError lists every rule a request broke. Error reports the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	return e.Violations[0]
}

// NotFoundError reports an operation on an unknown id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports a second budget for an already budgeted category.
type ConflictError struct {
	Category Category
}

func (e *ConflictError) Error() string {
	return "Budget for this category already exists"
}

// StorageError reports a failed flush. The in-memory mutation that triggered
// it has already been applied.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("saving data: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
