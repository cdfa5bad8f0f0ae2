package models

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when no job exists for a request id.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExists is returned when a request id is already taken.
	ErrJobExists = errors.New("job already exists")

	// ErrTerminalJob is returned on any attempt to mutate a COMPLETED or FAILED job.
	ErrTerminalJob = errors.New("job already in terminal status")

	// ErrTrainingDiverged is returned when the training loss becomes non-finite.
	ErrTrainingDiverged = errors.New("training diverged: non-finite loss")

	// ErrSentimentUnavailable marks the non-fatal sentiment path failure.
	// The job completes without a sentiment section.
	ErrSentimentUnavailable = errors.New("sentiment unavailable")

	// ErrPollTimeout is the client-local condition when the poll bound is
	// exceeded. The server-side job may still complete later.
	ErrPollTimeout = errors.New("poll timeout: job not terminal within poll bound")
)

// ValidationError marks a request that can never succeed: bad ticker,
// malformed dates, insufficient history. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, a ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, a...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
