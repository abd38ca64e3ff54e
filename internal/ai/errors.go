package ai

import "errors"

var (
	// ErrRemoteCall covers transport, timeout and non-2xx failures from the
	// text-generation provider.
	ErrRemoteCall = errors.New("ai: remote call failed")

	// ErrMalformedResponse means the model text did not hold the expected JSON.
	ErrMalformedResponse = errors.New("ai: malformed model response")
)
