package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/config"
	pkgerrors "pipelinq/pkg/errors"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int

	err := RetryWithCallback(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(attempt int, err error, _ time.Duration) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(2), func() error {
		calls++
		return errors.New("still down")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"explicit fatal", NewFatalError(errors.New("bad payload"))},
		{"validation app error", pkgerrors.ErrValidation.WithMessage("bad")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastPolicy(5), func() error {
				calls++
				return tt.err
			})
			require.Error(t, err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestRetry_RetriesRetryableAppError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		return pkgerrors.ErrServiceUnavailable
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyFromConfig(t *testing.T) {
	policy := PolicyFromConfig(config.RetryConfig{MaxAttempts: 5, InitialInterval: 200 * time.Millisecond})
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, policy.InitialInterval)
	assert.Equal(t, 30*time.Second, policy.MaxInterval)
	assert.Equal(t, 2.0, policy.Multiplier)
}

func TestCalculateBackoffDuration(t *testing.T) {
	assert.Equal(t, time.Second, CalculateBackoffDuration(0, time.Second, 2, 10*time.Second))
	assert.Equal(t, 4*time.Second, CalculateBackoffDuration(2, time.Second, 2, 10*time.Second))
	assert.Equal(t, 10*time.Second, CalculateBackoffDuration(5, time.Second, 2, 10*time.Second))
}
