package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the chat subsystem.
const (
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeMalformedEvent     = "MALFORMED_EVENT"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func NotAuthenticated(message string, err error) *AppError {
	return &AppError{
		Code:    CodeNotAuthenticated,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// BackendUnavailable marks transport-level failures against the backing store.
// Callers treat it as retryable.
func BackendUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBackendUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// MalformedEvent marks a live-channel payload that failed boundary validation.
// It is logged and dropped, never propagated past the subscription loop.
func MalformedEvent(message string, err error) *AppError {
	return &AppError{
		Code:    CodeMalformedEvent,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string, waitTime interface{}) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
