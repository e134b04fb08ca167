package simfs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SimError is the error type returned by every core operation. Errors carry
// one of the sentinel values below as their root cause so callers can test
// for a kind with errors.Is while still attaching context to the message.
type SimError interface {
	error
	WithMessage(message string) SimError
	Wrap(err error) SimError
}

type baseSimError string

const rootError = baseSimError("")

var ErrPermissionDenied = rootError.WithMessage("permission denied")
var ErrAuthenticationFailed = rootError.WithMessage("authentication failed")
var ErrNotFound = rootError.WithMessage("no such file, directory, or user")
var ErrInvalidOperation = rootError.WithMessage("invalid operation")
var ErrInvalidFormat = rootError.WithMessage("invalid format")

// ErrOutOfSpace is reported when an allocation can't be satisfied. The text
// is the literal message the shell shows the user.
var ErrOutOfSpace = rootError.WithMessage("not enough space")

func (e baseSimError) Error() string {
	return string(e)
}

func (e baseSimError) WithMessage(message string) SimError {
	return customSimError{
		message:       message,
		originalError: e,
	}
}

func (e baseSimError) Wrap(err error) SimError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customSimError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a
// string describing the error.
func (e customSimError) Error() string {
	return e.message
}

func (e customSimError) WithMessage(message string) SimError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customSimError) Wrap(err error) SimError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customSimError) Unwrap() error {
	return e.originalError
}
