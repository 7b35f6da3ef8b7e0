package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAttached indicates the session has no transport.
	ErrNotAttached = errors.New("no transport attached")
	// ErrNotOpen indicates the transport must be opened first.
	ErrNotOpen = errors.New("transport not open")
	// ErrAlreadyOpen indicates the transport is already open.
	ErrAlreadyOpen = errors.New("transport already open")
	// ErrBusy indicates another exchange is in flight on the session.
	ErrBusy = errors.New("exchange in progress")
)

// TransportError wraps a failure of the underlying channel.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the channel error.
func (e *TransportError) Unwrap() error { return e.Err }
