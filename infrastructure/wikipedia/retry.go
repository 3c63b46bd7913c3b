package wikipedia

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"namethatpage-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RetryPolicy configures exponential backoff between attempts.
// MaxRetries counts retries, so a fetch runs at most MaxRetries+1 times.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

// DefaultRetryPolicy returns the clickstream retry defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

type retrier struct {
	name    string
	policy  RetryPolicy
	logger  *zap.Logger
	metrics *observability.Collector

	// sleep is replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetrier(name string, policy RetryPolicy, logger *zap.Logger, metrics *observability.Collector) *retrier {
	return &retrier{
		name:    name,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		sleep:   sleepContext,
	}
}

// do runs fn until it succeeds, retries are exhausted, the context ends or
// the circuit breaker rejects the call. The last error is returned.
func (r *retrier) do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateDelay(attempt - 1)
			r.logger.Warn("retrying operation",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			r.metrics.RecordRetry(r.name)

			if err := r.sleep(ctx, delay); err != nil {
				return lastErr
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func (r *retrier) calculateDelay(retry int) time.Duration {
	factor := r.policy.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	baseDelay := float64(r.policy.InitialDelay) * math.Pow(factor, float64(retry))

	if maxDelay := float64(r.policy.MaxDelay); maxDelay > 0 && baseDelay > maxDelay {
		baseDelay = maxDelay
	}

	// -jitter to +jitter
	jitter := r.policy.JitterFactor * baseDelay * (rand.Float64()*2 - 1)
	finalDelay := baseDelay + jitter
	if finalDelay < 0 {
		finalDelay = 0
	}

	return time.Duration(finalDelay)
}

func retryable(err error) bool {
	return !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
