package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrMalformedInput = errors.New("malformed input")
	ErrInternal       = errors.New("internal server error")
	ErrNotReady       = errors.New("model not built yet")
)

// FieldError reports a malformed value in a named column of a named row.
// It wraps ErrMalformedInput so callers can match with errors.Is.
type FieldError struct {
	Column string
	Row    int64
	Value  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed value %q in column %q (row id %d)", e.Value, e.Column, e.Row)
}

func (e *FieldError) Unwrap() error {
	return ErrMalformedInput
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
