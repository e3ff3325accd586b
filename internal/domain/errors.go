package domain

import "errors"

var (
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited indicates rate limit exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ModelError is an application-level error reported by the language-model
// service (invalid key, quota exceeded, ...). Its message is surfaced to the
// caller to aid debugging, unlike transport errors which stay generic.
type ModelError struct {
	Message string
}

func (e *ModelError) Error() string {
	return e.Message
}
