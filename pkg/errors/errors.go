// Package errors defines custom error types and error handling utilities for the verification service.
// This package provides structured error types that map to API error codes and HTTP status codes.
package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/utils"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the API error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description safe to show callers
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of AppError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrServerError creates a server_error error. The description never carries internal detail.
func ErrServerError(message string) AppError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"Internal server error during certificate verification",
		message,
	)
}

// ErrInvalidConfig creates an invalid_config error
func ErrInvalidConfig(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidConfig,
		http.StatusInternalServerError,
		"Invalid configuration",
		message,
	)
}

// ================================================================================
// Domain-Specific Error Constructors
// ================================================================================

// ErrInvalidCertificateFormat creates a format error for a malformed certificate identifier
func ErrInvalidCertificateFormat(certificateID string) AppError {
	return NewError(
		constants.ErrCodeInvalidCertificateFormat,
		http.StatusBadRequest,
		"Invalid certificate ID format",
		fmt.Sprintf("certificate id %q does not match the expected format", certificateID),
	).WithMetadata("certificate_id", certificateID).
		WithMetadata("format_hint", constants.CertificateIDFormatHint)
}

// ErrCertificateNotFound creates a not found error for an unknown or inactive certificate
func ErrCertificateNotFound(certificateID string) AppError {
	return NewError(
		constants.ErrCodeCertificateNotFound,
		http.StatusNotFound,
		"Certificate not found or has been revoked",
		fmt.Sprintf("no active certificate with id %s", certificateID),
	).WithMetadata("certificate_id", certificateID)
}

// ErrRecordNotFound creates a generic storage-level not found error
func ErrRecordNotFound(resource string, key string) AppError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		fmt.Sprintf("%s not found", resource),
		fmt.Sprintf("%s not found: %s", resource, key),
	).WithMetadata("resource", resource)
}

// ErrRateLimitExceeded creates a rate limit exceeded error
func ErrRateLimitExceeded(endpoint string, retryAfter time.Duration) AppError {
	seconds := utils.CeilSeconds(retryAfter)
	if seconds < 1 {
		seconds = 1
	}
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"Too many verification attempts. Please try again later.",
		fmt.Sprintf("rate limit exceeded for endpoint %s", endpoint),
	).WithMetadata("endpoint", endpoint).
		WithMetadata("retry_after", seconds)
}

// ErrConflict creates a conflict error, used when a unique constraint is violated
func ErrConflict(message string) AppError {
	return NewError(
		constants.ErrCodeConflict,
		http.StatusConflict,
		"The resource already exists.",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if goerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps a generic error into an AppError
func WrapError(err error, code constants.ErrorCode, message string) AppError {
	var httpStatus int

	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeInvalidCertificateFormat:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeNotFound, constants.ErrCodeCertificateNotFound:
		httpStatus = http.StatusNotFound
	case constants.ErrCodeRateLimitExceeded:
		httpStatus = http.StatusTooManyRequests
	case constants.ErrCodeConflict:
		httpStatus = http.StatusConflict
	case constants.ErrCodeServiceUnavailable:
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, message, message).WithCause(err)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		code := appErr.Code()
		return code == constants.ErrCodeNotFound || code == constants.ErrCodeCertificateNotFound
	}
	return false
}

// IsRateLimitError checks if an error is related to rate limiting
func IsRateLimitError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus() == http.StatusTooManyRequests
	}
	return false
}

// IsConflictError checks if an error reports a unique constraint violation
func IsConflictError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == constants.ErrCodeConflict
	}
	return false
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus() >= 500
	}
	return true
}

//Personal.AI order the ending
