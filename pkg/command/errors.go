package command

import (
	"errors"
	"fmt"
)

// ErrEmptyInput indicates an empty command string.
var ErrEmptyInput = errors.New("empty command string")

// SyntaxError is implemented by all errors caused by a malformed
// command string.
type SyntaxError interface {
	error
	// Token returns the offending part of the command string.
	Token() string
}

// UnknownCommandError indicates the first character selects no command.
type UnknownCommandError struct {
	Char byte
}

// Error implements error.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %c", e.Char)
}

// Token implements SyntaxError.
func (e *UnknownCommandError) Token() string { return string(e.Char) }

// BadFormatError indicates a storage command string with a bad layout.
type BadFormatError struct {
	Input string
}

// Error implements error.
func (e *BadFormatError) Error() string {
	return fmt.Sprintf("bad command string: %q", e.Input)
}

// Token implements SyntaxError.
func (e *BadFormatError) Token() string { return e.Input }

// UnknownTaskError indicates an unrecognized storage task.
type UnknownTaskError struct {
	Task string
}

// Error implements error.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task: %s", e.Task)
}

// Token implements SyntaxError.
func (e *UnknownTaskError) Token() string { return e.Task }

// MissingAddressError indicates a required address field is absent.
type MissingAddressError struct {
	// Which is either "start" or "end".
	Which string
}

// Error implements error.
func (e *MissingAddressError) Error() string {
	return fmt.Sprintf("unrecognized %s address", e.Which)
}

// Token implements SyntaxError.
func (e *MissingAddressError) Token() string { return e.Which }

// BadFieldError indicates a numeric field can't be parsed or is out of range.
type BadFieldError struct {
	Field string
	Value string
	Err   error
}

// Error implements error.
func (e *BadFieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *BadFieldError) Unwrap() error { return e.Err }

// Token implements SyntaxError.
func (e *BadFieldError) Token() string { return e.Value }

// RangeError indicates the start address is beyond the end address.
type RangeError struct {
	Start uint32
	End   uint32
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("start address %d is beyond end address %d", e.Start, e.End)
}

// Token implements SyntaxError.
func (e *RangeError) Token() string { return fmt.Sprintf("%d:%d", e.Start, e.End) }
