package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors returned by storage adapters and services.
var (
	// ErrNotFound indicates that the requested tournament, team, area or
	// evaluation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates that a submission was rejected because the
	// caller exceeded its submission rate.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable indicates that the backing store could not be
	// reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// StoreError represents a failed storage operation. It includes the
// operation and the key it was applied to.
type StoreError struct {
	// Operation is the name of the store operation that failed.
	Operation string

	// Key identifies the record involved, such as an evaluation ID or a
	// rendered EvaluationKey.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(operation, key string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Key:       key,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
