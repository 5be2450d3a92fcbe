// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/viserio"
	"github.com/mdt-generator/backend/internal/wcl"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ShowErrorDetails includes raw error text in responses for unexpected errors.
var ShowErrorDetails = false

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewNoEntriesError creates a 422 for a note that yields nothing to encode
func NewNoEntriesError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "NO_ENTRIES",
		Message: "no valid entries found in MRT notes",
		Details: cause.Error(),
	}
}

// NewMalformedTimestampError creates a 400 for an unparseable M:SS value
func NewMalformedTimestampError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "MALFORMED_TIMESTAMP",
		Message: "malformed timestamp",
		Details: cause.Error(),
	}
}

// NewUpstreamError creates a 502 for Warcraft Logs failures
func NewUpstreamError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// FromError maps domain errors onto API errors. Unknown errors become 500s.
func FromError(err error, message string) *APIError {
	var apiErr *APIError
	var tsErr *parser.MalformedTimestampError
	var gqlErr *wcl.GraphQLError
	var statusErr *wcl.StatusError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, viserio.ErrNoEntries):
		return NewNoEntriesError(err)
	case errors.As(err, &tsErr):
		return NewMalformedTimestampError(err)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, wcl.ErrFightNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message, Details: err.Error()}
	case errors.Is(err, wcl.ErrNoToken):
		return &APIError{Status: http.StatusNotFound, Code: "NO_TOKEN", Message: "No token available"}
	case errors.Is(err, wcl.ErrInvalidReportURL):
		return NewBadRequestError(message, err)
	case errors.As(err, &gqlErr), errors.As(err, &statusErr):
		return NewUpstreamError(message, err)
	}
	return NewInternalError(message, err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
