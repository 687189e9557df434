package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by stores, services and the HTTP layer.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrCapacityExceeded = errors.New("participant limit reached")
	ErrStorage          = errors.New("storage failure")

	// ErrVersionConflict is returned by stores when a compare-and-swap write
	// loses to a concurrent writer. Services retry and never surface it.
	ErrVersionConflict = errors.New("version conflict")
)

// ValidationError lists every rule a request broke. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a *ValidationError for the given problems.
func NewValidationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
