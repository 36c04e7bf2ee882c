// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// APIError represents a standard structure for API errors.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details. The sentinels below are
// shared, so they are never mutated.
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a different user-facing message.
func (e *APIError) WithMessage(message string) *APIError {
	cp := *e
	cp.Message = message
	return &cp
}

var (
	ErrBadRequest          = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized        = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required and has failed or has not yet been provided.")
	ErrLoginRequired       = NewAPIError(http.StatusUnauthorized, "LOGIN_REQUIRED", "Please sign in to continue.")
	ErrForbidden           = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource.")
	ErrAccessDenied        = NewAPIError(http.StatusForbidden, "ACCESS_DENIED", "Access denied. Administrator privileges are required.")
	ErrNotFound            = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrConflict            = NewAPIError(http.StatusConflict, "CONFLICT", "A conflict occurred with the current state of the resource.")
	ErrUnprocessableEntity = NewAPIError(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The request was well-formed but was unable to be followed due to semantic errors.")
	ErrTooManyRequests     = NewAPIError(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many attempts. Please try again later.")
	ErrInternalServer      = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")
	ErrBadGateway          = NewAPIError(http.StatusBadGateway, "BACKEND_ERROR", "The marketplace service could not complete the request.")
	ErrServiceUnavailable  = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "The server is currently unable to handle the request.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_ERROR",
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// FormatValidationErrors converts validator.ValidationErrors into a map keyed
// by the field's JSON name.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		errorMap[e.Field()] = ValidationMessage(e)
	}
	return errorMap
}

// ValidationMessage renders a single field error as a user-facing sentence.
func ValidationMessage(e validator.FieldError) string {
	field := humanize(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL.", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", field, e.Param())
	case "max":
		return fmt.Sprintf("%s may not be greater than %s characters.", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s.", field, e.Param())
	case "password":
		return "Password must be at least 6 characters and include an uppercase and a lowercase letter."
	case "objectid":
		return fmt.Sprintf("%s is not a valid identifier.", field)
	default:
		return fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", e.Field(), e.Tag())
	}
}
