package ports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStoreError tests message formatting and matching of StoreError.
func TestStoreError(t *testing.T) {
	err := NewStoreError("Deactivate", "ev-42", ErrNotFound)

	assert.Equal(t, "store error: operation=Deactivate, key=ev-42, err=not found", err.Error())
	assert.Equal(t, "Deactivate", err.Operation)
	assert.Equal(t, "ev-42", err.Key)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrStoreUnavailable))

	var target *StoreError
	wrapped := errors.Join(errors.New("context"), err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "ev-42", target.Key)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("DATABASE_URL", ErrConfigNotFound)

	assert.Equal(t, "config error: key=DATABASE_URL, err=configuration not found", err.Error())
	assert.Equal(t, "DATABASE_URL", err.ConfigKey)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

// TestCommonInfrastructureErrors checks that each error has the expected
// message.
func TestCommonInfrastructureErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrNotFound, "not found"},
		{ErrRateLimited, "rate limited"},
		{ErrStoreUnavailable, "store unavailable"},
		{ErrConfigNotFound, "configuration not found"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

// TestErrorUnwrapping ensures every custom error type unwraps to its cause.
func TestErrorUnwrapping(t *testing.T) {
	baseErr := errors.New("underlying error")

	errorList := []interface {
		error
		Unwrap() error
	}{
		NewStoreError("op", "key", baseErr),
		NewConfigError("key", baseErr),
	}

	for _, err := range errorList {
		unwrapped := err.Unwrap()
		assert.Equal(t, baseErr, unwrapped, "%T should unwrap to base error", err)
		assert.True(t, errors.Is(err, baseErr), "%T should match base error with Is", err)
	}
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsCollector = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordLatency("rank", 0, nil)
		m.RecordCounter("c", 1, map[string]string{"a": "b"})
		m.RecordGauge("g", 1, nil)
		m.RecordHistogram("h", 1, nil)
	})
}
