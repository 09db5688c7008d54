package play

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")

	// ErrRequestInFlight means the same idempotency key was seen while its
	// original operation is still running. The client should retry shortly
	// and will then receive the stored outcome.
	ErrRequestInFlight = errors.New("request_in_flight")
)
