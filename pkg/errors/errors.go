// Package errors augments the standard errors with sentinel values
// that may be wrapped around a cause without losing their identity.
//
// A sentinel declared with New is never mutated: Wrap and WrapWithLog
// yield a fresh error which still matches the sentinel with errors.Is.
package errors

import (
	stderr "errors"

	"go.uber.org/zap"
)

var _ error = New("")

// New declares a sentinel error
func New(msg string) *Error {
	e := &Error{msg: msg}
	e.origin = e
	return e
}

// Error augments the standard error interface with a Wrap method.
//
// The main difference with github.com/pkg/errors is that we are wrapping
// errors from errors, not from text.
type Error struct {
	msg    string
	err    error
	origin *Error
}

// Error message, including the wrapped cause if any
func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, origin: e.origin}
}

// WrapMessage wraps a plain text cause
func (e *Error) WrapMessage(format string, args ...interface{}) *Error {
	return e.Wrap(Errorf(format, args...))
}

// WrapWithLog wraps a nested error and logs the outcome as an error
func (e *Error) WrapWithLog(l *zap.Logger, err error, fields ...zap.Field) *Error {
	wrapped := e.Wrap(err)
	if l != nil {
		l.Error(e.msg, append(fields, zap.Error(err))...)
	}
	return wrapped
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.origin == t.origin
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
