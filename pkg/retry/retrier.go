package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Do runs operation until it succeeds, returns a non-retryable error, or the
// policy's retries are spent. Backoff waits end early when ctx is done.
func Do(ctx context.Context, policy Policy, logger *zap.Logger, operation func() error) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}
	backoff := NewBackoff(policy)

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retries",
					zap.Int("attempt", attempt),
					zap.Int("max_retries", policy.MaxRetries))
			}
			return nil
		}

		if !isRetryable(policy, lastErr) {
			logger.Debug("Error is not retryable",
				zap.Error(lastErr),
				zap.Int("attempt", attempt))
			return lastErr
		}

		if attempt >= policy.MaxRetries {
			break
		}

		wait := backoff.Calculate(attempt + 1)
		logger.Debug("Retrying operation",
			zap.Error(lastErr),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", policy.MaxRetries),
			zap.Duration("backoff", wait))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	logger.Warn("Max retries exceeded",
		zap.Error(lastErr),
		zap.Int("attempts", policy.MaxRetries+1),
		zap.Int("max_retries", policy.MaxRetries))
	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func isRetryable(policy Policy, err error) bool {
	if policy.RetryableFunc != nil {
		return policy.RetryableFunc(err)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
