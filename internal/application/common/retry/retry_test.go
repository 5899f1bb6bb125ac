package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(maxRetries int, checker Checker) (*Executor, *[]time.Duration) {
	var delays []time.Duration
	exec := NewExecutor(&Config{
		MaxRetries:    maxRetries,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      40 * time.Millisecond,
		BackoffFactor: 2,
	}, checker)
	exec.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return exec, &delays
}

func TestExecutor_Execute(t *testing.T) {
	transient := errors.New("connection reset by peer")
	fatal := errors.New("invalid api key")

	tests := []struct {
		name         string
		results      []error
		maxRetries   int
		wantErr      error
		wantAttempts int
		wantDelays   []time.Duration
	}{
		{
			name:         "succeeds first time",
			results:      []error{nil},
			maxRetries:   3,
			wantAttempts: 1,
		},
		{
			name:         "retries transient errors with backoff",
			results:      []error{transient, transient, nil},
			maxRetries:   3,
			wantAttempts: 3,
			wantDelays:   []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
		},
		{
			name:         "stops on non-retryable error",
			results:      []error{fatal},
			maxRetries:   3,
			wantErr:      fatal,
			wantAttempts: 1,
		},
		{
			name:         "gives up after max retries",
			results:      []error{transient, transient, transient, transient},
			maxRetries:   3,
			wantErr:      transient,
			wantAttempts: 4,
			wantDelays:   []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, delays := newTestExecutor(tt.maxRetries, nil)

			attempts := 0
			err := exec.Execute(context.Background(), func(context.Context) error {
				res := tt.results[attempts]
				attempts++
				return res
			})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantDelays, *delays)
		})
	}
}

func TestExecutor_CustomChecker(t *testing.T) {
	exec, _ := newTestExecutor(2, CheckerFunc(func(error) bool { return true }))

	attempts := 0
	err := exec.Execute(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("quota exhausted")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	exec := NewExecutor(&Config{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := exec.Execute(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("timeout talking to upstream")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetryableChecker(t *testing.T) {
	checker := DefaultRetryableChecker{}
	assert.True(t, checker.IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, checker.IsRetryable(errors.New("i/o timeout")))
	assert.False(t, checker.IsRetryable(errors.New("permission denied")))
	assert.False(t, checker.IsRetryable(context.Canceled))
	assert.False(t, checker.IsRetryable(nil))
}
