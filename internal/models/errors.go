package models

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures that abort (or, for delivery, are reported by) a run.
type ErrorKind string

const (
	ErrConfiguration     ErrorKind = "configuration"
	ErrSourceUnavailable ErrorKind = "source_unavailable"
	ErrLookup            ErrorKind = "lookup"
	ErrDelivery          ErrorKind = "delivery"
)

// Error carries a kind, a message and the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
