// Package wikipedia holds the HTTP clients for the Wikimedia services the
// game reads from: the clickstream navigation API and the MediaWiki action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"namethatpage-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	clickstreamUpstream = "clickstream"
	wikipediaUpstream   = "wikipedia"

	maxResponseBytes = 4 << 20
)

// Options are shared by every upstream client
type Options struct {
	HTTPClient     *http.Client
	UserAgent      string
	Timeout        time.Duration
	CircuitBreaker bool
	Metrics        *observability.Collector
}

// StatusError is returned for a non-2xx upstream response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// upstream performs JSON GETs against one host with a per-call timeout,
// the configured User-Agent and an optional circuit breaker.
type upstream struct {
	name      string
	client    *http.Client
	userAgent string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
	metrics   *observability.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
}

func newUpstream(name string, opts Options, logger *zap.Logger) *upstream {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * opts.Timeout}
	}

	u := &upstream{
		name:      name,
		client:    client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		metrics:   opts.Metrics,
		tracer:    observability.Tracer("wikipedia"),
		logger:    logger.Named(name),
	}

	if opts.CircuitBreaker {
		u.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < 5 {
					return false
				}
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= 0.8
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				u.logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
				u.metrics.SetBreakerState(name, int(to))
			},
			// a 4xx is an answer about the request, not about the host's health
			IsSuccessful: func(err error) bool {
				var statusErr *StatusError
				if errors.As(err, &statusErr) {
					return statusErr.StatusCode < 500
				}
				return err == nil
			},
		})
	}

	return u
}

// getJSON fetches rawURL and decodes the body into target
func (u *upstream) getJSON(ctx context.Context, rawURL string, target interface{}) (err error) {
	ctx, span := u.tracer.Start(ctx, u.name+".get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", rawURL)),
	)
	start := time.Now()
	defer func() {
		u.metrics.RecordUpstream(u.name, outcomeOf(err), time.Since(start))
		observability.EndSpan(span, err)
	}()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	call := func() (interface{}, error) {
		return nil, u.do(ctx, rawURL, target)
	}
	if u.breaker == nil {
		_, err = call()
		return err
	}
	_, err = u.breaker.Execute(call)
	return err
}

func (u *upstream) do(ctx context.Context, rawURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
