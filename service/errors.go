package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSubmission = errors.New("invalid resource request")
	ErrRateLimited       = errors.New("too many requests for today")
	ErrInvalidStatus     = errors.New("invalid request status")
	ErrNotFound          = errors.New("resource request not found")
	// ErrStorage wraps every database failure, callers answer with 503
	ErrStorage = errors.New("storage unavailable")
)

// ValidationError tells which field of a submission is wrong
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidSubmission, e.Err}
}

type RateLimitError struct {
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("limit of %d requests per day reached, retry in %v", e.Limit, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %v, %w", ErrStorage, op, err)
}
