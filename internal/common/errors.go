// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the use cases.
var (
	// ErrValidation marks malformed or rule-violating input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission marks an entity that belongs to another owner.
	ErrPermission = errors.New("permission denied")

	// Database errors.
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// NewValidationError reports a guard or input violation.
func NewValidationError(format string, args ...any) error {
	return NewUserError(fmt.Sprintf(format, args...), ErrValidation)
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(format string, args ...any) error {
	return NewUserError(fmt.Sprintf(format, args...), ErrNotFound)
}

// NewPermissionError reports an owner mismatch.
func NewPermissionError(format string, args ...any) error {
	return NewUserError(fmt.Sprintf(format, args...), ErrPermission)
}

// ErrorKind classifies an error for callers that map it to an external signal.
type ErrorKind int

// Error kinds, ordered by how callers usually map them.
const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindPermission
)

// Kind reports which of the domain error kinds err carries.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// UserMessage returns the message meant for the user, falling back to err.Error().
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
