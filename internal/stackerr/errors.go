// Package stackerr defines the error taxonomy shared by the stack storage
// engine and the allocation service.
//
// Errors are categorized by Kind rather than by concrete Go type, mirroring
// the StoreError{Code, Message} shape used throughout the metadata store:
// callers branch on Kind, not on a type switch, and CLI front-ends map Kind
// directly to an exit code and a short message.
package stackerr

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error.
type Kind int

const (
	// InvalidArgument covers an unparseable index identifier, a cookie
	// mismatch on fetch, a size field that would overflow uint32, or an
	// unrecognized object-store URL scheme.
	InvalidArgument Kind = iota

	// IOError covers any failure surfaced by the object store, or a
	// failure to parse a binary record.
	IOError

	// ConfigError covers a malformed path or a missing required
	// configuration field.
	ConfigError

	// CloseError covers a failure to close one of the three streams
	// that make up a stack during finalization.
	CloseError

	// ControllerError covers a non-OK response from the allocation
	// service's RPC surface.
	ControllerError

	// CrcMismatch covers a check_crc=true fetch whose computed CRC
	// disagreed with the header CRC.
	CrcMismatch

	// MagicMismatch covers a magic header or record-delimiter that
	// failed validation.
	MagicMismatch
)

// String renders the Kind the way it appears in CLI error output.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case IOError:
		return "IOError"
	case ConfigError:
		return "ConfigError"
	case CloseError:
		return "CloseError"
	case ControllerError:
		return "ControllerError"
	case CrcMismatch:
		return "CrcMismatch"
	case MagicMismatch:
		return "MagicMismatch"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the core. Nothing in the
// core wraps a bare error from the standard library without attaching a
// Kind; this keeps error-kind inspection uniform at every call site.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that carries an underlying cause, preserving it
// for errors.Is / errors.As / errors.Unwrap chains.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, stackerr.New(stackerr.CrcMismatch, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, returning
// IOError as the conservative default for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return IOError
}
