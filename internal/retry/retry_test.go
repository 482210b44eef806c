package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/logging"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	t.Parallel()

	rec := &recordingSleeper{}
	policy := NewPolicy(3, 100*time.Millisecond)
	policy.Sleep = rec.sleep

	calls := 0
	got, err := Do(context.Background(), policy, logging.Discard(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, rec.waits)
}

func TestDoReturnsLastError(t *testing.T) {
	t.Parallel()

	rec := &recordingSleeper{}
	policy := NewPolicy(4, 10*time.Millisecond)
	policy.Sleep = rec.sleep

	calls := 0
	_, err := Do(context.Background(), policy, nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom " + string(rune('0'+calls)))
	})

	require.EqualError(t, err, "boom 4")
	assert.Equal(t, 4, calls)
	assert.Len(t, rec.waits, 3)
}

func TestDoDoesNotSleepAfterFirstSuccess(t *testing.T) {
	t.Parallel()

	rec := &recordingSleeper{}
	policy := NewPolicy(5, time.Second)
	policy.Sleep = rec.sleep

	_, err := Do(context.Background(), policy, nil, func(ctx context.Context) (bool, error) {
		return true, nil
	})

	require.NoError(t, err)
	assert.Empty(t, rec.waits)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, NewPolicy(3, time.Hour), nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyWorstCaseWait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy Policy
		want   time.Duration
	}{
		{"single attempt", NewPolicy(1, time.Second), 0},
		{"three attempts", NewPolicy(3, time.Second), 2500 * time.Millisecond},
		{"capped", Policy{MaxAttempts: 4, InitialDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}, 6 * time.Second},
		{"zero attempts treated as one", Policy{InitialDelay: time.Second}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.WorstCaseWait())
		})
	}
}
