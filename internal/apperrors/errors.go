package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed application error carrying an HTTP status and a stable
// machine-readable code
type Error struct {
	Message    string
	StatusCode int
	Code       string
	cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// Common application errors
var (
	ErrInvalidRequest = &Error{Message: "Invalid request", StatusCode: http.StatusBadRequest, Code: "INVALID_REQUEST"}
	ErrNotFound       = &Error{Message: "Resource not found", StatusCode: http.StatusNotFound, Code: "NOT_FOUND"}
	ErrInternalServer = &Error{Message: "Internal server error", StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR"}
	ErrUnauthorized   = &Error{Message: "Unauthorized", StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED"}
	ErrForbidden      = &Error{Message: "Forbidden", StatusCode: http.StatusForbidden, Code: "FORBIDDEN"}
	ErrConflict       = &Error{Message: "Resource already exists", StatusCode: http.StatusConflict, Code: "CONFLICT"}
	ErrValidation     = &Error{Message: "Validation error", StatusCode: http.StatusBadRequest, Code: "VALIDATION_ERROR"}
	ErrDatabase       = &Error{Message: "Database error", StatusCode: http.StatusInternalServerError, Code: "DATABASE_ERROR"}
)

// NewValidationError creates a validation error with a custom message
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
	}
}

// NewNotFoundError creates a not-found error naming the missing resource
func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
	}
}

// NewDatabaseError wraps a store-level failure
func NewDatabaseError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
	}
}

// WrapDatabaseError maps a store-level failure onto the taxonomy, keeping the
// cause reachable through errors.Is/As
func WrapDatabaseError(err error, format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...) + ": " + err.Error(),
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		cause:      err,
	}
}

// NewUnauthorizedError creates an unauthorized error with a custom message
func NewUnauthorizedError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
	}
}

// IsNotFound reports whether err is a not-found application error
func IsNotFound(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == "NOT_FOUND"
}

// IsDatabase reports whether err is a database application error
func IsDatabase(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == "DATABASE_ERROR"
}

// IsValidation reports whether err is a validation application error
func IsValidation(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR"
}

// StatusCode returns the HTTP status for an error, defaulting to 500 for
// anything that is not a typed application error
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// CodeOf returns the machine-readable code of an error, or INTERNAL_ERROR
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}
