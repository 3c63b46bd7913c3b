package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpstream_CircuitBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := testOptions()
	opts.CircuitBreaker = true
	u := newUpstream("test", opts, zap.NewNop())

	var target map[string]interface{}
	for i := 0; i < 5; i++ {
		err := u.getJSON(context.Background(), server.URL, &target)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	}

	err := u.getJSON(context.Background(), server.URL, &target)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), hits.Load())
	assert.Equal(t, "rejected", outcomeOf(err))
}

func TestUpstream_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	opts := testOptions()
	opts.CircuitBreaker = true
	u := newUpstream("test", opts, zap.NewNop())

	var target map[string]interface{}
	for i := 0; i < 10; i++ {
		assert.Error(t, u.getJSON(context.Background(), server.URL, &target))
	}
	assert.Equal(t, int32(10), hits.Load())
}

func TestUpstream_PerCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond
	u := newUpstream("test", opts, zap.NewNop())

	var target map[string]interface{}
	err := u.getJSON(context.Background(), server.URL, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrier_BackoffGrowsAndCaps(t *testing.T) {
	r := newRetrier("test", RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      300 * time.Millisecond,
		BackoffFactor: 2,
		JitterFactor:  0.1,
	}, zap.NewNop(), nil)

	assert.InDelta(t, float64(100*time.Millisecond), float64(r.calculateDelay(0)), float64(10*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(r.calculateDelay(1)), float64(20*time.Millisecond))
	assert.InDelta(t, float64(300*time.Millisecond), float64(r.calculateDelay(4)), float64(30*time.Millisecond))
}

func TestRetrier_AttemptCount(t *testing.T) {
	r := newRetrier("test", fastRetry(3), zap.NewNop(), nil)

	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	attempts := 0
	err := r.do(context.Background(), "op", func(ctx context.Context) error {
		attempts++
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 4, attempts)
	assert.Len(t, delays, 3)
}

func TestRetrier_DoesNotRetryOpenBreaker(t *testing.T) {
	r := newRetrier("test", fastRetry(3), zap.NewNop(), nil)

	attempts := 0
	err := r.do(context.Background(), "op", func(ctx context.Context) error {
		attempts++
		return gobreaker.ErrOpenState
	})

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 1, attempts)
}
