package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies failures raised below the HTTP layer.
type ErrorType string

const (
	ErrTypeLoad        ErrorType = "LOAD"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeStorage     ErrorType = "STORAGE"
)

// AppError is a service-layer failure. Cause keeps the package sentinel so
// callers can still match it with errors.Is.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key that is echoed in the problem document.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// StatusCode maps the error type to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewLoadError reports a source that could not be read.
func NewLoadError(message string, cause error) *AppError {
	return newAppError(ErrTypeLoad, message, cause)
}

// NewValidationError reports a request the service cannot answer as asked.
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrTypeValidation, message, cause)
}

// NewUnavailableError reports a dependency that is not ready yet.
func NewUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrTypeUnavailable, message, cause)
}

// NewConfigError reports configuration that cannot be acted on.
func NewConfigError(message string, cause error) *AppError {
	return newAppError(ErrTypeConfig, message, cause)
}

// NewStorageError reports a failed write of exported data.
func NewStorageError(message string, cause error) *AppError {
	return newAppError(ErrTypeStorage, message, cause)
}
