// File: errorx.go
// Title: Structured Error Implementation
// Description: Implements a structured error type carrying a classification
//              code, the failing operation, and free-form detail fields while
//              staying compatible with Go's standard error interface and the
//              errors.Is/As unwrapping machinery.

package errorx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is a structured error with a code, operation and detail fields.
type Error struct {
	message   string
	cause     error
	code      Code
	operation string
	details   map[string]interface{}
}

// New creates a new structured error with the given message.
func New(message string) *Error {
	return &Error{
		message: message,
		code:    CodeUnknown,
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an additional message. A nil cause
// yields a plain error so callers may wrap unconditionally.
func Wrap(cause error, message string) *Error {
	e := New(message)
	e.cause = cause
	if inner, ok := cause.(*Error); ok {
		e.code = inner.code
	}
	return e
}

// WithCode sets the classification code.
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	return e
}

// WithOperation records the operation that produced the error,
// in package.Function form.
func (e *Error) WithOperation(op string) *Error {
	e.operation = op
	return e
}

// WithDetail attaches a single contextual detail field.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.operation != "" {
		b.WriteString(e.operation)
		b.WriteString(": ")
	}
	b.WriteString(e.message)
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.details[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the classification code.
func (e *Error) Code() Code {
	return e.code
}

// Operation returns the recorded operation.
func (e *Error) Operation() string {
	return e.operation
}

// Details returns the attached detail fields. The returned map is the
// error's own; callers must not mutate it.
func (e *Error) Details() map[string]interface{} {
	return e.details
}

// CodeOf extracts the classification code from any error. Wrapped
// non-structured errors report CodeUnknown; nil reports an empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
