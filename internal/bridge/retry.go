package bridge

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryWithBackoff runs op up to maxAttempts times, sleeping
// initialDelay * 2^(attempt-1) between failures. There is no jitter and no
// cap on the delay; with the low attempt counts this service uses, the
// longest wait stays in the tens of seconds. When all attempts fail the
// returned error wraps both ErrMaxRetriesExceeded and the last underlying
// error. The backoff sleep honors context cancellation.
func RetryWithBackoff(ctx context.Context, log *logrus.Logger, name string, maxAttempts int, initialDelay time.Duration, op func() error) error {
	if maxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be at least 1, got %d", maxAttempts)
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.WithFields(logrus.Fields{
			"operation": name,
			"attempt":   attempt,
			"max":       maxAttempts,
		}).Debug("attempting operation")

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		log.WithFields(logrus.Fields{
			"operation": name,
			"attempt":   attempt,
			"max":       maxAttempts,
		}).WithError(lastErr).Warn("operation failed")

		if attempt == maxAttempts {
			break
		}

		wait := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: %s failed after %d attempts: %w", ErrMaxRetriesExceeded, name, maxAttempts, lastErr)
}
