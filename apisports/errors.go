package apisports

import "fmt"

// StatusError is a non-200 reply from the provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d", e.Code)
}

// TransportError is a network-level failure before any HTTP status arrived.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedError covers everything else: malformed bodies, a response field
// that is not a list, truncated reads.
type UnexpectedError struct {
	Message string
}

func (e *UnexpectedError) Error() string {
	return "unexpected provider error: " + e.Message
}
