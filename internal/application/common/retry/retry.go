package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"vertextester/internal/application/common/slogger"
)

// Config defines retry behavior.
type Config struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
	Jitter        bool          `json:"jitter"`
}

// DefaultConfig returns the retry configuration used for model calls.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Operation is a unit of work that can be retried.
type Operation func(ctx context.Context) error

// Checker classifies errors as retryable.
type Checker interface {
	IsRetryable(err error) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(err error) bool

// IsRetryable implements Checker.
func (f CheckerFunc) IsRetryable(err error) bool { return f(err) }

// Executor runs operations with exponential backoff.
type Executor struct {
	config  *Config
	checker Checker
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor using DefaultRetryableChecker when checker is nil.
func NewExecutor(config *Config, checker Checker) *Executor {
	if config == nil {
		config = DefaultConfig()
	}
	if checker == nil {
		checker = DefaultRetryableChecker{}
	}
	return &Executor{config: config, checker: checker, sleep: sleepContext}
}

// Execute runs operation until it succeeds, returns a non-retryable error,
// exhausts MaxRetries, or ctx is done.
func (r *Executor) Execute(ctx context.Context, operation Operation) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateDelay(attempt)
			slogger.Debug(ctx, "Retrying operation after delay", slogger.Fields{
				"attempt":     attempt,
				"max_retries": r.config.MaxRetries,
				"delay_ms":    delay.Milliseconds(),
			})
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 0 {
				slogger.Info(ctx, "Operation succeeded after retries", slogger.Fields{
					"attempt": attempt + 1,
				})
			}
			return nil
		}
		lastErr = err

		if !r.checker.IsRetryable(err) {
			return err
		}

		slogger.Warn(ctx, "Operation failed, will retry", slogger.Fields{
			"error":       err.Error(),
			"attempt":     attempt + 1,
			"max_retries": r.config.MaxRetries,
		})
	}

	return fmt.Errorf("operation failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

func (r *Executor) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		// +/-25%
		delay += (rand.Float64()*2 - 1) * delay * 0.25
	}
	return time.Duration(delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultRetryableChecker retries common transient network failures.
type DefaultRetryableChecker struct{}

// IsRetryable implements Checker.
func (DefaultRetryableChecker) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary",
		"try again",
		"network is unreachable",
		"no route to host",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
