// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for scripted consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants. Uppercase, underscore-separated, stable across minor versions.
const (
	TaskNotFound       = "TASK_NOT_FOUND"
	CategoryNotFound   = "CATEGORY_NOT_FOUND"
	TagNotFound        = "TAG_NOT_FOUND"
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreAlreadyExists = "STORE_ALREADY_EXISTS"
	InvalidInput       = "INVALID_INPUT"
	EmptyTitle         = "EMPTY_TITLE"
	InvalidPriority    = "INVALID_PRIORITY"
	InvalidDate        = "INVALID_DATE"
	InvalidDateRange   = "INVALID_DATE_RANGE"
	InvalidPage        = "INVALID_PAGE"
	InvalidPageSize    = "INVALID_PAGE_SIZE"
	InvalidSort        = "INVALID_SORT"
	InvalidFormat      = "INVALID_FORMAT"
	InvalidRole        = "INVALID_ROLE"
	NoChanges          = "NO_CHANGES"
	ConfirmationReq    = "CONFIRMATION_REQUIRED"
	ActionDisabled     = "ACTION_DISABLED"
	NoTagSelected      = "NO_TAG_SELECTED"
	PermissionDenied   = "PERMISSION_DENIED"
	NotLoggedIn        = "NOT_LOGGED_IN"
	PersistenceError   = "PERSISTENCE_ERROR"
	PartialFailure     = "PARTIAL_FAILURE"
	InternalError      = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error whose message is the cause's message, verbatim.
func Wrap(code string, cause error) *Error {
	return &Error{Code: code, Message: cause.Error(), cause: cause}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// HasCode reports whether err (or anything it wraps) is an *Error with the given code.
func HasCode(err error, code string) bool {
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.Code == code
	}
	return false
}

// Retryable reports whether err is a persistence failure the user may retry.
func Retryable(err error) bool {
	return HasCode(err, PersistenceError) || HasCode(err, PartialFailure)
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
