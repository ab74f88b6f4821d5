package faults

import "errors"

// Category classifies a failure for reporting.
type Category string

const (
	RemoteOperationError Category = "RemoteOperationError"
	PreconditionError    Category = "PreconditionError"
	ValidationError      Category = "ValidationError"
	NotFoundError        Category = "NotFoundError"
	InternalError        Category = "InternalError"
)

// TypedError carries a category, a human message and an optional cause.
type TypedError struct {
	Category Category
	Message  string
	Cause    error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func New(category Category, message string, cause error) *TypedError {
	return &TypedError{Category: category, Message: message, Cause: cause}
}

// Precondition reports a caller-side guard that did not hold.
func Precondition(message string) *TypedError {
	return New(PreconditionError, message, nil)
}

// Remote wraps a failure from the remote service.
func Remote(message string, cause error) *TypedError {
	return New(RemoteOperationError, message, cause)
}

func IsCategory(err error, category Category) bool {
	if err == nil {
		return false
	}
	var typed *TypedError
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Category == category
}

// CategoryOf returns the category of the outermost TypedError in err's chain.
// Untyped errors are treated as remote failures since every operation run by
// the task coordinator talks to the remote service.
func CategoryOf(err error) Category {
	var typed *TypedError
	if errors.As(err, &typed) {
		return typed.Category
	}
	return RemoteOperationError
}

// CauseChain returns the messages of the errors wrapped beneath err,
// outermost first, excluding err itself. Joined errors contribute each
// branch in order.
func CauseChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if inner == nil {
					continue
				}
				chain = append(chain, inner.Error())
				walk(inner)
			}
		case interface{ Unwrap() error }:
			inner := u.Unwrap()
			if inner == nil {
				return
			}
			chain = append(chain, inner.Error())
			walk(inner)
		}
	}
	if err != nil {
		walk(err)
	}
	return chain
}
