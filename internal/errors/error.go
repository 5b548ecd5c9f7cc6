package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryAuth     Category = "auth"
	CategoryMessages Category = "messages"
	CategoryCLI      Category = "cli"
)

// SignupError is a structured error with a code, suggestion and wrapped cause.
type SignupError struct {
	// Code is a unique error identifier (e.g., "S101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SignupError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SignupError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SignupError) WithSuggestion(s string) *SignupError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SignupError) WithDetail(d string) *SignupError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *SignupError) Wrap(err error) *SignupError {
	e.Wrapped = err
	return e
}

// New creates a SignupError from a registered error code.
func New(code string) *SignupError {
	template, ok := registry[code]
	if !ok {
		return &SignupError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SignupError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new SignupError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SignupError {
	return &SignupError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a SignupError.
// An error that already is a *SignupError is returned unchanged.
func FromError(err error, code string) *SignupError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SignupError); ok {
		return se
	}
	return New(code).Wrap(err)
}
