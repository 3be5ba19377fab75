package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource already exists")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrValidation         = errors.New("validation error")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrConfiguration      = errors.New("configuration error")
)

const (
	codeNotFound           = "NOT_FOUND"
	codeUnauthorized       = "UNAUTHORIZED"
	codeForbidden          = "FORBIDDEN"
	codeBadRequest         = "BAD_REQUEST"
	codeConflict           = "CONFLICT"
	codeInternal           = "INTERNAL_SERVER_ERROR"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeValidation         = "VALIDATION_ERROR"
	codeRateLimited        = "RATE_LIMITED"

	msgInvalidCredentials = "invalid email or password"
)

// AppError carries a client-safe message next to the sentinel it classifies as.
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: codeNotFound, Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: codeUnauthorized, Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: codeForbidden, Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: codeBadRequest, Message: msg, Err: ErrBadRequest}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: codeConflict, Message: msg, Err: ErrConflict}
}

func Validation(msg string) *AppError {
	return &AppError{Code: codeValidation, Message: msg, Err: ErrValidation}
}

func RateLimited(msg string) *AppError {
	return &AppError{Code: codeRateLimited, Message: msg, Err: ErrRateLimited}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: codeInternal, Message: msg, Err: err}
}

// InvalidCredentials uses the generic message unless the caller needs a more
// specific (still non-enumerating) one, such as a role mismatch at login.
func InvalidCredentials(msg ...string) *AppError {
	m := msgInvalidCredentials
	if len(msg) > 0 && msg[0] != "" {
		m = msg[0]
	}
	return &AppError{Code: codeInvalidCredentials, Message: m, Err: ErrInvalidCredentials}
}
