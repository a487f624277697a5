package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while scoring and ranking.
var (
	// ErrInvalidConfiguration indicates that tournament or ranking
	// configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates that an evaluation or score entry is
	// malformed (wrong entry kind, non-finite value, missing identity).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownAggregation indicates an aggregation method tag that no
	// aggregator is registered for.
	ErrUnknownAggregation = errors.New("unknown aggregation method")

	// ErrUnknownScoringType indicates a scoring type tag outside
	// rubric, performance and mixed.
	ErrUnknownScoringType = errors.New("unknown scoring type")
)

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap lets callers match any ValidationError with
// errors.Is(err, ErrInvalidConfiguration).
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// ErrOrNil returns the ValidationError when it holds messages and nil
// otherwise, so callers can return it directly.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
