package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

// doRequestWithBreaker executes an HTTP request through a circuit breaker.
// classify maps provider-specific status codes to bridge errors; when it
// returns a non-nil error the response body is closed and the failure
// counts toward tripping the breaker. Retry-with-backoff lives in the sync
// core, not here, so a tripped breaker short-circuits all of a cycle's
// attempts at once.
func doRequestWithBreaker(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
	classify func(*http.Response) error,
) (*http.Response, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", bridge.ErrConnection, execErr)
		}

		if classErr := classify(resp); classErr != nil {
			resp.Body.Close()
			return nil, classErr
		}

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open: %v", bridge.ErrConnection, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
