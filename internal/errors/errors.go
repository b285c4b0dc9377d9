package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeAuthentication ErrCode = "AUTHENTICATION_ERROR"
	ErrCodeNetwork        ErrCode = "NETWORK_ERROR"
	ErrCodeRemote         ErrCode = "REMOTE_ERROR"
	ErrCodeNotFound       ErrCode = "NOT_FOUND"
	ErrCodeBadRequest     ErrCode = "BAD_REQUEST"
	ErrCodeInternal       ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	// StatusCode is the HTTP status reported by GitHub, if any
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates an error for a missing, invalid or
// insufficiently scoped credential
func NewAuthenticationError(message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       ErrCodeAuthentication,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewNetworkError creates an error for a request that could not complete
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: "request to GitHub could not complete",
		Err:     err,
	}
}

// NewRemoteError creates an error for a non-2xx response not caused by the credential
func NewRemoteError(statusCode int, message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeRemote,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasCode(err error, code ErrCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsAuthentication checks if the error is an authentication error
func IsAuthentication(err error) bool {
	return hasCode(err, ErrCodeAuthentication)
}

// IsNetwork checks if the error is a network error
func IsNetwork(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsRemote checks if the error is a remote error
func IsRemote(err error) bool {
	return hasCode(err, ErrCodeRemote)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsBadRequest checks if the error is a bad request error
func IsBadRequest(err error) bool {
	return hasCode(err, ErrCodeBadRequest)
}
