package bridge

import "errors"

var (
	// ErrConnection covers transport failures, timeouts and unexpected
	// status codes from either provider API.
	ErrConnection = errors.New("api connection error")

	// ErrAuth is returned when a provider rejects the configured API key.
	ErrAuth = errors.New("authentication failed")

	// ErrStationNotFound is returned when the source provider has no such
	// station, or no current observations for it.
	ErrStationNotFound = errors.New("station not found")

	// ErrRateLimited is returned when the source provider throttles us.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidData is returned when the target provider rejects a payload.
	ErrInvalidData = errors.New("invalid data")

	// ErrInvalidObservation is returned by the transformer when an
	// observation carries none of the measurements worth forwarding.
	ErrInvalidObservation = errors.New("observation must contain at least one measurement")

	// ErrMaxRetriesExceeded wraps the last underlying error after all
	// retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
