package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Charx error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInvalidArchive ErrorCode = "INVALID_ARCHIVE" // 422
	ErrCardMissing    ErrorCode = "CARD_MISSING"    // 422
	ErrCardInvalid    ErrorCode = "CARD_INVALID"    // 422
	ErrWorkerFailure  ErrorCode = "WORKER_FAILURE"  // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// CharxError represents a structured error with code, status, and details.
type CharxError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CharxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CharxError {
	return &CharxError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a file or archive entry cannot be found.
func NewNotFound(identifier string) *CharxError {
	return &CharxError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidArchive creates a 422 error for data that is not a readable archive.
func NewInvalidArchive(err error) *CharxError {
	msg := "not a readable archive"
	if err != nil {
		msg = fmt.Sprintf("not a readable archive: %v", err)
	}
	return &CharxError{
		Code:    ErrInvalidArchive,
		Status:  422,
		Message: msg,
	}
}

// NewCardMissing creates a 422 error for archives that carry no card.json entry.
func NewCardMissing() *CharxError {
	return &CharxError{
		Code:    ErrCardMissing,
		Status:  422,
		Message: "archive does not contain card.json",
	}
}

// NewCardInvalid creates a 422 error for card.json entries that cannot be normalized.
func NewCardInvalid(reason string) *CharxError {
	return &CharxError{
		Code:    ErrCardInvalid,
		Status:  422,
		Message: fmt.Sprintf("card.json is invalid: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewWorkerFailure creates a 500 error for a parse job that crashed instead of
// returning a result.
func NewWorkerFailure(jobID string, cause any) *CharxError {
	return &CharxError{
		Code:    ErrWorkerFailure,
		Status:  500,
		Message: fmt.Sprintf("parse job %s failed: %v", jobID, cause),
		Details: map[string]any{"job_id": jobID},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CharxError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CharxError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a CharxError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CharxError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
