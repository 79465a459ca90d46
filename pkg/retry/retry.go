// Package retry provides exponential backoff for store transport calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable checks if an error is marked as non-retryable
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // total attempts, 0 runs once
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // cap on any single delay
	Multiplier   float64       // backoff multiplier
	AddJitter    bool          // add up to 25% random delay

	// OnRetry, when set, is called before each backoff sleep with the
	// attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns the policy used for store requests.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  4,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Once returns a policy that never retries.
func Once() Config {
	return Config{MaxAttempts: 1}
}

func (cfg Config) normalized() (Config, error) {
	if cfg.InitialDelay < 0 {
		return cfg, errors.New("retry: InitialDelay cannot be negative")
	}
	if cfg.MaxDelay < 0 {
		return cfg, errors.New("retry: MaxDelay cannot be negative")
	}
	if cfg.Multiplier < 0 {
		return cfg, errors.New("retry: Multiplier cannot be negative")
	}
	if cfg.Multiplier > 1000 {
		cfg.Multiplier = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		return cfg, errors.New("retry: MaxDelay must be >= InitialDelay")
	}
	return cfg, nil
}

// Do executes fn with exponential backoff retry. Errors wrapped with
// NonRetryable stop immediately and are returned unchanged.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg, err := cfg.normalized()
	if err != nil {
		return err
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := delay
		if cfg.AddJitter && delay >= 4 {
			randMu.Lock()
			sleep += time.Duration(randSource.Int63n(int64(delay / 4)))
			randMu.Unlock()
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, sleep)
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}

		next := float64(delay) * cfg.Multiplier
		if next > float64(cfg.MaxDelay) {
			delay = cfg.MaxDelay
		} else {
			delay = time.Duration(next)
		}
	}

	if cfg.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
