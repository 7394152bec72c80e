package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrValidation ErrorCode = iota + 1000
	ErrDuplicateEmail
	ErrInvalidCredentials
	ErrUnauthorized
	ErrInvalidToken
	ErrTokenExpired
	ErrForbidden
	ErrNotFound
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrDuplicateEmail:
		return http.StatusConflict
	case ErrInvalidCredentials, ErrUnauthorized, ErrInvalidToken, ErrTokenExpired:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func Validation(message string, err error) *AppError {
	return &AppError{Code: ErrValidation, Message: message, Err: err}
}

func DuplicateEmail(email string) *AppError {
	return &AppError{Code: ErrDuplicateEmail, Message: fmt.Sprintf("email %s is already registered", email)}
}

func InvalidCredentials() *AppError {
	return &AppError{Code: ErrInvalidCredentials, Message: "invalid credentials"}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Code: ErrUnauthorized, Message: message}
}

func InvalidToken(err error) *AppError {
	return &AppError{Code: ErrInvalidToken, Message: "invalid token", Err: err}
}

func TokenExpired() *AppError {
	return &AppError{Code: ErrTokenExpired, Message: "token expired"}
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "permission denied"
	}
	return &AppError{Code: ErrForbidden, Message: message}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// Is reports whether err carries the given application error code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
