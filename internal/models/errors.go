package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed indicates the request could not be tied to a user.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrConflict indicates a storage-level uniqueness violation.
	ErrConflict = errors.New("uniqueness conflict")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError is raised when a catalog write violates a domain invariant.
// It is always surfaced to the caller and never retried.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
