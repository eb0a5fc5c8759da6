package errors

import (
	"net/http"
)

// APIError is a client-facing failure with a fixed status and a stable
// error code. ErrorHandler renders it as a problem document whose type is
// taken from the catalogue entry it was built from.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`

	problemType string
}

func (e *APIError) Error() string {
	return e.Message
}

// ProblemType returns the RFC 7807 type URI for the error.
func (e *APIError) ProblemType() string {
	if e.problemType == "" {
		return TypeInternal
	}
	return e.problemType
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	out := *e
	out.Details = details
	return &out
}

// ValidationError describes a single rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload for multi-field rejections.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError that renders with the internal problem type.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func define(statusCode int, errorCode, problemType, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, problemType: problemType}
}

// Catalogue of errors returned by the dashboard API.
var (
	ErrInvalidRequest    = define(http.StatusBadRequest, "INVALID_REQUEST", TypeValidation, "Invalid request format")
	ErrValidationFailed  = define(http.StatusBadRequest, "VALIDATION_FAILED", TypeValidation, "Request validation failed")
	ErrNoDistrictData    = define(http.StatusNotFound, "NO_DISTRICT_DATA", TypeNoDistrictData, "No source carries a district column")
	ErrRateLimitExceeded = define(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", TypeRateLimit, "Rate limit exceeded, retry shortly")
	ErrRequestTimeout    = define(http.StatusGatewayTimeout, "REQUEST_TIMEOUT", TypeTimeout, "The request took too long to process")
	ErrInternal          = define(http.StatusInternalServerError, "INTERNAL_ERROR", TypeInternal, "An unexpected error occurred")
	ErrExportFailed      = define(http.StatusInternalServerError, "EXPORT_FAILED", TypeExportFailed, "Export failed")
	ErrDatasetNotLoaded  = define(http.StatusServiceUnavailable, "DATASET_NOT_LOADED", TypeDataNotLoaded, "Dataset has not been loaded")
)

// InvalidRequestWithError rejects a request that could not be decoded.
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// ErrValidation rejects a single query field.
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ValidationError{Field: field, Message: message})
}

// NewValidationErrors rejects several query fields at once.
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errors})
}
