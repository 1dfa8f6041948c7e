// Package apperrors defines the closed error taxonomy shared by services,
// middleware and HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an application error.
type Code string

const (
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeEmptyCart         Code = "EMPTY_CART"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

// Error is a classified error carrying a message that is safe to show to
// clients. Err holds the underlying cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and client-facing message to err.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message)
}

func InvalidCredential(message string) *Error {
	return New(CodeInvalidCredential, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

func InsufficientStockf(format string, args ...interface{}) *Error {
	return Newf(CodeInsufficientStock, format, args...)
}

func EmptyCart() *Error {
	return New(CodeEmptyCart, "Cart is empty")
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Internal wraps an unexpected failure. The cause is never shown to clients.
func Internal(err error) *Error {
	return Wrap(CodeInternal, "Internal server error", err)
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when err is not classified.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Classify returns err as an *Error, wrapping unclassified errors as Internal.
func Classify(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
