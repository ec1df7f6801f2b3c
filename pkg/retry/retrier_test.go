package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(3), zap.NewNop(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_GivesUp(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(2), zap.NewNop(), func() error {
		attempts++
		return errors.New("down")
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, attempts)
}

func TestDo_NonRetryable(t *testing.T) {
	policy := fastPolicy(5)
	permanent := errors.New("permanent")
	policy.RetryableFunc = func(err error) bool { return !errors.Is(err, permanent) }

	attempts := 0
	err := Do(context.Background(), policy, zap.NewNop(), func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_InvalidPolicy(t *testing.T) {
	called := false
	err := Do(context.Background(), Policy{MaxRetries: -1, Multiplier: 2}, zap.NewNop(), func() error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, fastPolicy(3), zap.NewNop(), func() error {
		attempts++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	b := NewBackoff(Policy{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2})

	assert.Equal(t, time.Second, b.Calculate(1))
	assert.Equal(t, 2*time.Second, b.Calculate(2))
	assert.Equal(t, 3*time.Second, b.Calculate(5))
}
