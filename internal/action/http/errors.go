package http

import "fmt"

// InvalidURLError represents an invalid URL error. No request was sent.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %s: %s", e.URL, e.Reason)
}

// NetworkError represents a network-level error.
type NetworkError struct {
	URL    string
	Reason string
	Cause  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// RequestError reports step config that cannot form a request.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request %s: %s", e.Field, e.Reason)
}
