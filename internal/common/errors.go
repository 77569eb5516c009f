// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a stored record or custom category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabaseBusy marks transient SQLite lock contention.
	ErrDatabaseBusy = errors.New("database busy")

	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrEmptyCorpus      = errors.New("training corpus is empty")
	ErrModelUnavailable = errors.New("classifier model unavailable")

	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying error with a message fit for the terminal.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message shown to the user.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// IsRetryable reports whether err is transient. Cancellation never is.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable
	}
	return errors.Is(err, ErrDatabaseBusy)
}
