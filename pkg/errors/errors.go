package errors

import (
	"fmt"
)

// stringError is a trivial comparable error. It's used instead of the
// standard library's errors.New so that errors constructed from the same
// message compare equal in tests.
type stringError string

func (err stringError) Error() string {
	return string(err)
}

// New returns an error with the given message.
func New(msg string) error {
	return stringError(msg)
}

// ctxError annotates an error with the operation that produced it. The
// original error is recoverable via RootCause.
type ctxError struct {
	context string
	err     error
}

func (err ctxError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

func (err ctxError) Unwrap() error {
	return err.err
}

// WithContext wraps `err` with a short description of the operation that
// failed. Callers add one layer per call site so that the final message
// reads like a breadcrumb trail.
func WithContext(err error, context string) error {
	return ctxError{context, err}
}

// RootCause unwraps all the context layers and returns the original error.
func RootCause(err error) error {
	for {
		ctx, ok := err.(ctxError)
		if !ok {
			return err
		}
		err = ctx.err
	}
}

// FriendlyError is an error with a message meant to be shown directly to
// users, without any wrapping context or stack noise.
type FriendlyError interface {
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// NewFriendlyError returns an error whose message is shown to the user
// verbatim.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}
