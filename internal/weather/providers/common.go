package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used by every provider constructor.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// resilientClient executes outbound requests with retries, exponential
// backoff and a per-provider circuit breaker.
type resilientClient struct {
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func newResilientClient(name string, client *http.Client, logger *zap.Logger) *resilientClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resilientClient{
		client:  client,
		backoff: DefaultBackoff,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		logger: logger.Named(name),
	}
}

// getJSON issues the request built by buildRequest and decodes a 2xx JSON
// body into out.
func (c *resilientClient) getJSON(ctx context.Context, buildRequest func() (*http.Request, error), out any) error {
	resp, err := c.do(ctx, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *resilientClient) do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	if c.client == nil {
		return nil, errNoHTTPClient
	}
	if c.backoff.MaxRetries < 0 || c.backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, errServerError
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		// Client errors other than rate limiting will not improve on retry.
		if errors.Is(err, errUnexpected) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		c.logger.Debug("retrying request", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func newGet(rawURL string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, rawURL, nil)
	}
}

func boolPtr(b bool) *bool { return &b }
