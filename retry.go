package codeshift

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   2 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if error is retryable
		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}

	return false
}

// RetryableStore wraps a StateStore with retry logic for transient errors.
type RetryableStore struct {
	store  StateStore
	config RetryConfig
}

// NewRetryableStore creates a new store with retry logic.
func NewRetryableStore(store StateStore, cfg RetryConfig) *RetryableStore {
	return &RetryableStore{
		store:  store,
		config: cfg,
	}
}

// Load implements StateStore with retry logic.
func (s *RetryableStore) Load(ctx context.Context) (*Snapshot, error) {
	return WithRetry(ctx, s.config, func() (*Snapshot, error) {
		return s.store.Load(ctx)
	})
}

// Save implements StateStore with retry logic.
func (s *RetryableStore) Save(ctx context.Context, snap *Snapshot) error {
	_, err := WithRetry(ctx, s.config, func() (struct{}, error) {
		return struct{}{}, s.store.Save(ctx, snap)
	})
	return err
}

// Clear implements StateStore with retry logic.
func (s *RetryableStore) Clear(ctx context.Context) error {
	_, err := WithRetry(ctx, s.config, func() (struct{}, error) {
		return struct{}{}, s.store.Clear(ctx)
	})
	return err
}

// Unwrap returns the wrapped store.
func (s *RetryableStore) Unwrap() StateStore {
	return s.store
}

// Verify RetryableStore implements StateStore
var _ StateStore = (*RetryableStore)(nil)
