// Package errors provides typed errors for taskflow.
//
// Every failure the interview engine, the issue assembler, or the issue
// backend can surface maps to one of the kinds below. All types implement
// the standard error interface and work with errors.Is() and errors.As()
// from both the standard library and cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NotFoundError is returned when an interview id is unknown, expired, or
// already cleaned up.
type NotFoundError struct {
	InterviewID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("interview %q not found", e.InterviewID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(interviewID string) *NotFoundError {
	return &NotFoundError{InterviewID: interviewID}
}

// ValidationError reports an operation attempted on an interview that
// cannot support it (assembling an incomplete interview, answering a
// completed one).
type ValidationError struct {
	InterviewID string
	Message     string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.InterviewID != "" {
		return fmt.Sprintf("interview %s: %s", e.InterviewID, e.Message)
	}
	return "validation error: " + e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(interviewID, message string) *ValidationError {
	return &ValidationError{InterviewID: interviewID, Message: message}
}

// BackendError represents a failed Issue Backend call. Backend failures are
// always recoverable: local interview state is never touched by them.
type BackendError struct {
	Operation  string // e.g. "CreateIssue", "ListOpenIssues"
	StatusCode int    // HTTP status code if applicable
	Message    string
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("issue backend %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("issue backend %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a new BackendError.
func NewBackendError(operation, message string) *BackendError {
	return &BackendError{Operation: operation, Message: message}
}

// NewBackendErrorWithStatus creates a new BackendError with an HTTP status code.
func NewBackendErrorWithStatus(operation string, statusCode int, message string) *BackendError {
	return &BackendError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  isRetryableHTTPStatus(statusCode),
	}
}

// NewBackendErrorWithCause creates a new BackendError with an underlying cause.
func NewBackendErrorWithCause(operation, message string, cause error) *BackendError {
	return &BackendError{
		Operation: operation,
		Message:   message,
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// StoreError reports that the persistence layer failed. A mutating call that
// returns a StoreError has not committed anything: the previously persisted
// state is still authoritative.
type StoreError struct {
	Operation   string // e.g. "save", "load", "list"
	InterviewID string
	Cause       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := "unknown cause"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.InterviewID != "" {
		return fmt.Sprintf("interview store %s for %s failed: %s", e.Operation, e.InterviewID, msg)
	}
	return fmt.Sprintf("interview store %s failed: %s", e.Operation, msg)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, interviewID string, cause error) *StoreError {
	return &StoreError{Operation: operation, InterviewID: interviewID, Cause: cause}
}

// BusyError is returned when a second answer for the same interview arrives
// while the first one is still being applied.
type BusyError struct {
	InterviewID string
}

// Error implements the error interface.
func (e *BusyError) Error() string {
	return fmt.Sprintf("interview %s is busy: another answer is being recorded, retry shortly", e.InterviewID)
}

// NewBusyError creates a new BusyError.
func NewBusyError(interviewID string) *BusyError {
	return &BusyError{InterviewID: interviewID}
}

// IsRetryable checks if an error or any error in its chain is retryable.
// Busy interviews are retryable by definition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var beErr *BackendError
	if errors.As(err, &beErr) {
		return beErr.Retryable
	}

	var busyErr *BusyError
	return errors.As(err, &busyErr)
}

// IsNotFound checks if an error or any error in its chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// IsValidation checks if an error or any error in its chain is a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsBackend checks if an error or any error in its chain is a BackendError.
func IsBackend(err error) bool {
	var beErr *BackendError
	return errors.As(err, &beErr)
}

// IsStore checks if an error or any error in its chain is a StoreError.
func IsStore(err error) bool {
	var sErr *StoreError
	return errors.As(err, &sErr)
}

// IsBusy checks if an error or any error in its chain is a BusyError.
func IsBusy(err error) bool {
	var busyErr *BusyError
	return errors.As(err, &busyErr)
}

// isRetryableHTTPStatus returns true for HTTP status codes that are typically retryable.
func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// Re-export commonly used functions from cockroachdb/errors so callers
// can use tferrors.Wrap() without importing two packages.
var (
	New           = errors.New
	Newf          = errors.Newf
	Wrap          = errors.Wrap
	Wrapf         = errors.Wrapf
	Is            = errors.Is
	As            = errors.As
	CombineErrors = errors.CombineErrors
)
