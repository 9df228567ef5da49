package records

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a record with the given ID does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record fails validation before it
	// is stored.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicate is returned when a unique field (such as NIP) is already
	// taken by another record.
	ErrDuplicate = errors.New("duplicate record")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

// NotFound builds the error stores return for a missing record.
func NotFound(kind, id string) error { return &NotFoundError{Kind: kind, ID: id} }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError reports whether err was caused by the caller's input rather
// than by storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) || errors.Is(err, ErrDuplicate)
}
