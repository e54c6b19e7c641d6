package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	// validation
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"

	// authentication / authorization
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"

	ErrNotFound ErrorCode = "NOT_FOUND"

	// conflicts
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrSlotAlreadyClaimed ErrorCode = "SLOT_ALREADY_CLAIMED"
	ErrAlreadyBooked      ErrorCode = "BOOKING_ALREADY_EXISTS"

	// faults that never reach the caller of a committed reservation
	ErrIntegrity  ErrorCode = "INTEGRITY_VIOLATION"
	ErrDependency ErrorCode = "DEPENDENCY_FAILURE"

	ErrStorage        ErrorCode = "STORAGE_FAILURE"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternalServer.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if stderrors.As(err, &ae) && ae != nil {
		return ae.Code
	}
	return ErrInternalServer
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var ae *AppError
	return stderrors.As(err, &ae) && ae != nil && ae.Code == code
}

// IsConflict reports whether the code belongs to the conflict family (409).
func IsConflict(code ErrorCode) bool {
	switch code {
	case ErrAlreadyExists, ErrSlotAlreadyClaimed, ErrAlreadyBooked:
		return true
	}
	return false
}
