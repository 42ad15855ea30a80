// Package errors defines the categorised errors returned across bears. Every
// error carries an ErrorType so callers can branch on the failure class
// without matching message text.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType is the failure class of an Error
type ErrorType string

const (
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation covers bad arguments, such as an unknown aggregate
	// kind or a numeric aggregate over a text column
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound is an unknown column or key name
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeSchema is a structural mismatch in tabular input, such as a
	// row whose field count differs from the header
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeEmptyGroup is a value aggregate over a group with no
	// non-missing values. Only raised when strict empty groups are requested.
	ErrorTypeEmptyGroup ErrorType = "empty_group"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeFile       ErrorType = "file"
	ErrorTypeData       ErrorType = "data"
)

const maxStackDepth = 32

// Error is a categorised error with optional cause, details and the call
// stack at the point it was first raised
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is one caller in an Error's stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (e *Error) Error() string {
	msg := string(e.Type) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a bare *Error of the same type, so
// errors.Is(err, &Error{Type: ErrorTypeSchema}) tests the category.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Message == "" && t.Type == e.Type
}

// WithDetail records a key/value pair on e and returns it for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// New returns an error of the given type
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message, Stack: callers(3)}
}

// Newf is New with a format string
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Stack: callers(3)}
}

// Wrap returns nil for a nil err. Otherwise it returns an error of errType
// whose cause is err. When err already is an *Error its stack is reused.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Type: errType, Message: message, Cause: err}
	var inner *Error
	if errors.As(err, &inner) {
		wrapped.Stack = inner.Stack
	} else {
		wrapped.Stack = callers(3)
	}
	return wrapped
}

// IsType reports whether err or anything in its chain has type errType
func IsType(err error, errType ErrorType) bool {
	return err != nil && errors.Is(err, &Error{Type: errType})
}

// IsSchema reports whether err is a schema error
func IsSchema(err error) bool { return IsType(err, ErrorTypeSchema) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsEmptyGroup reports whether err is an empty-group error
func IsEmptyGroup(err error) bool { return IsType(err, ErrorTypeEmptyGroup) }

// callers returns the stack from skip frames above runtime.Callers; 3 is the
// caller of New
func callers(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]StackFrame, 0, n)
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
