package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vv-events/dashboard/internal/errors"
)

var errDown = apperrors.Wrap(errors.New("connection refused"), apperrors.ErrCodeUnavailable, "GET /users/me")

func TestPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	p := Policy{Attempts: 3, Delay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errDown
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_ExhaustsAttempts(t *testing.T) {
	var retried []int
	p := Policy{Attempts: 3, Delay: time.Millisecond, OnRetry: func(attempt int, _ error) {
		retried = append(retried, attempt)
	}}
	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errDown
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err), "last error is returned unwrapped")
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestPolicy_FixedDelay(t *testing.T) {
	p := Policy{Attempts: 3, Delay: 20 * time.Millisecond}
	start := time.Now()
	_ = p.Do(context.Background(), func(context.Context, int) error { return errDown })
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPolicy_StopsOnNonRetryable(t *testing.T) {
	p := Policy{Attempts: 5}
	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return apperrors.Unauthorized("token rejected")
	})
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 1, calls)
}

func TestPolicy_Permanent(t *testing.T) {
	p := Policy{Attempts: 5, Retryable: func(error) bool { return true }}
	calls := 0
	sentinel := errors.New("stop")
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return Permanent(sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestPolicy_ContextCanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 3, Delay: time.Hour}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(context.Context, int) error {
		calls++
		return errDown
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errDown
	})
	assert.Equal(t, 1, calls)
}
