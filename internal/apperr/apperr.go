package apperr

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ValidationError is a local, user-correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError is a failed or timed out call to the persistence layer.
// Callers keep their state so the operation can be retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Op + ": remote operation failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the remote call ran out of time.
func (e *NetworkError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Remote wraps err as a NetworkError unless it is nil, already classified,
// or ErrNotFound.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne *NetworkError
	var ve *ValidationError
	if errors.As(err, &ne) || errors.As(err, &ve) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &NetworkError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
