// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeError      ErrorType = "processing_error"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeTimeout    ErrorType = "timeout"

	// ErrorTypeNetwork covers transport failures and non-2xx responses.
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeRemote covers well-formed responses carrying success=false.
	ErrorTypeRemote ErrorType = "remote_error"
)

// AppError is the single error shape surfaced to users.
type AppError struct {
	Type       ErrorType
	Message    string
	Err        error
	Code       string
	StatusCode int
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

// NewAppError builds an AppError with the default code for its type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

// NewNetworkError records a transport failure or an HTTP status outside 2xx.
// statusCode is 0 when no response arrived.
func NewNetworkError(message string, statusCode int, originalError error) *AppError {
	e := NewAppError(ErrorTypeNetwork, message, originalError)
	e.StatusCode = statusCode
	return e
}

// NewRemoteError records an application-level failure reported by the server.
func NewRemoteError(message, code string, statusCode int) *AppError {
	e := NewAppError(ErrorTypeRemote, message, nil)
	if code != "" {
		e.Code = code
	}
	e.StatusCode = statusCode
	return e
}

func isType(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }
func IsNotFoundError(err error) bool   { return isType(err, ErrorTypeNotFound) }
func IsConflictError(err error) bool   { return isType(err, ErrorTypeConflict) }
func IsNetworkError(err error) bool    { return isType(err, ErrorTypeNetwork) }
func IsRemoteError(err error) bool     { return isType(err, ErrorTypeRemote) }

// UserMessage returns the message to show in an alert or banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status the API server responds with.
func HTTPStatus(err error) int {
	var appError *AppError
	if !errors.As(err, &appError) {
		return http.StatusInternalServerError
	}
	switch appError.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the error code carried by err, or UNKNOWN_ERROR.
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) && appError.Code != "" {
		return appError.Code
	}
	return "UNKNOWN_ERROR"
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeConflict:
		return "CONFLICT"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeRemote:
		return "REMOTE_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError prefixes message onto err, keeping the type when err is already an AppError.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:       appError.Type,
			Message:    fmt.Sprintf("%s: %s", message, appError.Message),
			Err:        appError.Err,
			Code:       appError.Code,
			StatusCode: appError.StatusCode,
		}
	}

	return NewAppError(errType, message, err)
}
