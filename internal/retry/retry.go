package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMultiplier is applied to the delay after every failed attempt.
const DefaultMultiplier = 1.5

// Policy describes how many times an operation runs and how long to wait in between.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	// MaxDelay caps a single wait; zero leaves it uncapped.
	MaxDelay time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy builds a policy with the default 1.5x backoff.
func NewPolicy(maxAttempts int, initialDelay time.Duration) Policy {
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

// Delays lists every wait the policy performs when all attempts fail.
func (p Policy) Delays() []time.Duration {
	attempts := p.attempts()
	if attempts <= 1 {
		return nil
	}

	delays := make([]time.Duration, 0, attempts-1)
	delay := p.InitialDelay
	for i := 1; i < attempts; i++ {
		delays = append(delays, p.capped(delay))
		delay = p.next(delay)
	}
	return delays
}

// WorstCaseWait is the total backoff spent when every attempt fails.
func (p Policy) WorstCaseWait() time.Duration {
	var total time.Duration
	for _, d := range p.Delays() {
		total += d
	}
	return total
}

// Do runs op until it succeeds or the policy is exhausted, returning the last error.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
		delay   = p.InitialDelay
	)

	attempts := p.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := p.capped(delay)
		if logger != nil {
			logger.Warn("attempt failed, retrying",
				"attempt", attempt,
				"max_attempts", attempts,
				"backoff", wait,
				"error", err)
		}

		if sErr := p.sleep(ctx, wait); sErr != nil {
			return zero, fmt.Errorf("retry aborted after attempt %d: %w", attempt, sErr)
		}
		delay = p.next(delay)
	}

	return zero, lastErr
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) next(delay time.Duration) time.Duration {
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	return time.Duration(float64(delay) * multiplier)
}

func (p Policy) capped(delay time.Duration) time.Duration {
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
