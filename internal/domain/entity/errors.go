package entity

import (
	"errors"
	"fmt"
)

// Standard domain errors
var (
	ErrEmptyTitle       = errors.New("Please enter a movie title.")
	ErrUnexpectedFormat = errors.New("Unexpected response format from recommendation API.")
	ErrNotFound         = errors.New("movie not found")
	ErrLookupDisabled   = errors.New("metadata lookup disabled: no OMDb API key")
)

// ValidationError is shown to the user verbatim and stops the workflow
// before any network call.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// BackendError reports a failed call to the recommendation backend.
// StatusCode is zero when no HTTP response was received.
type BackendError struct {
	StatusCode int
	Message    string
	Err        error
}

func NewStatusError(code int) *BackendError {
	return &BackendError{
		StatusCode: code,
		Message:    fmt.Sprintf("Backend returned status %d. Check if the API is running.", code),
	}
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "recommendation backend failed"
}

func (e *BackendError) Unwrap() error { return e.Err }
