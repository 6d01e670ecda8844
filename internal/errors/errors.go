package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind codes
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeNotFound       = "NOT_FOUND"
	CodeStorageFailure = "STORAGE_FAILURE"
)

// AppError represents an application error with a stable kind code
type AppError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same Code, so callers can test against the sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is
var (
	ErrInvalidInput   = &AppError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNotFound       = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrStorageFailure = &AppError{Code: CodeStorageFailure, Message: "storage failure"}
)

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// InvalidInput reports a rejected argument.
func InvalidInput(details string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
		Details: details,
	}
}

func InvalidURL(details string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: "The provided URL is invalid",
		Details: details,
	}
}

// Not Found Errors
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func URLNotFound(code string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("Short URL '%s' not found", code),
	}
}

// StorageFailure wraps an I/O or driver error raised while reading or writing op.
func StorageFailure(op string, err error) *AppError {
	return &AppError{
		Code:    CodeStorageFailure,
		Message: "storage failure",
		Details: op,
		Err:     err,
	}
}

// RowError describes a malformed mapping row that was skipped on load.
type RowError struct {
	Line   int
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsInvalidInput, IsNotFound and IsStorageFailure are shorthands for errors.Is.
func IsInvalidInput(err error) bool   { return stderrors.Is(err, ErrInvalidInput) }
func IsNotFound(err error) bool       { return stderrors.Is(err, ErrNotFound) }
func IsStorageFailure(err error) bool { return stderrors.Is(err, ErrStorageFailure) }
