package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrHasDependents is returned when a project delete is blocked by
	// dependent tasks, expenses, or incomes while cascade is disabled.
	ErrHasDependents = errors.New("project has dependent rows")

	// ErrReceiptIO wraps receipt file read/write failures.
	ErrReceiptIO = errors.New("receipt file error")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidHours  = errors.New("invalid hours")
	ErrInvalidDate   = errors.New("invalid date")
)

// ValidationError reports a required or malformed field. Callers match it
// with errors.As; the UI layer decides how to present it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
