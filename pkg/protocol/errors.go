package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyReply indicates the device returned nothing within the
	// wait window. It is never a valid zero reading.
	ErrEmptyReply = errors.New("empty reply")
	// ErrReplyOverflow indicates a version reply too large for int64 seconds.
	ErrReplyOverflow = errors.New("reply exceeds 8 bytes")
	// ErrInvalidDescriptor indicates the descriptor didn't pass parsing.
	ErrInvalidDescriptor = errors.New("descriptor is not valid")
)

// EncodingError indicates a descriptor that can't be put on the wire.
// Parsed descriptors never produce it.
type EncodingError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding: %s: %v", e.Reason, e.Err)
	}
	return "encoding: " + e.Reason
}

// Unwrap returns the cause.
func (e *EncodingError) Unwrap() error { return e.Err }

// DecodeError indicates a malformed frame.
type DecodeError struct {
	Frame  Frame
	Reason string
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Frame, e.Reason)
}

// CommandError wraps the error code of a v2 reply.
type CommandError struct {
	Code byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command error %d", e.Code)
}
