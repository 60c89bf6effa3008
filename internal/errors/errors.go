// Package errors holds the sentinel errors every layer wraps. The HTTP layer
// maps them to status codes and the CLI to exit messages.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict reports a duplicate, such as one node listed in two secrets files.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfiguration indicates the process was started with an unusable configuration.
	// It is fatal at startup and never recovered.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnavailable indicates a backing service (cache, database, KMS) could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
