package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Request errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeTimeout  ErrorType = "TIMEOUT"

	// Upstream and selection errors
	ErrorTypeUpstreamUnavailable ErrorType = "UPSTREAM_UNAVAILABLE"
	ErrorTypeResolveFailed       ErrorType = "RESOLVE_FAILED"
	ErrorTypeNoArticleAvailable  ErrorType = "NO_ARTICLE_AVAILABLE"
	ErrorTypeNoLinksFound        ErrorType = "NO_LINKS_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation '%s' timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout,
		StackTrace: captureStackTrace(),
	}
}

// NewUpstreamUnavailableError reports a clickstream or seed page fetch that failed
// after retries. The cause's message is kept as context.
func NewUpstreamUnavailableError(title string, err error) *AppError {
	msg := fmt.Sprintf("upstream data for '%s' is unavailable", title)
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &AppError{
		Type:       ErrorTypeUpstreamUnavailable,
		Message:    msg,
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewResolveFailedError reports a redirect lookup transport failure
func NewResolveFailedError(title string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeResolveFailed,
		Message:    fmt.Sprintf("failed to resolve redirects for '%s'", title),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewNoArticleAvailableError reports that random selection exhausted its restarts
func NewNoArticleAvailableError(attempts int, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeNoArticleAvailable,
		Message:    fmt.Sprintf("no article available after %d attempts", attempts),
		Details:    map[string]interface{}{"attempts": attempts},
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// NewNoLinksFoundError reports a seed category with an empty filtered pool
func NewNoLinksFoundError(category string) *AppError {
	return &AppError{
		Type:       ErrorTypeNoLinksFound,
		Message:    fmt.Sprintf("seed category '%s' has no usable links", category),
		Details:    map[string]interface{}{"category": category},
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsUpstreamUnavailable checks if an error is an upstream failure
func IsUpstreamUnavailable(err error) bool {
	return IsType(err, ErrorTypeUpstreamUnavailable)
}

// IsResolveFailed checks if an error is a redirect lookup failure
func IsResolveFailed(err error) bool {
	return IsType(err, ErrorTypeResolveFailed)
}

// IsNoArticleAvailable checks if random selection gave up
func IsNoArticleAvailable(err error) bool {
	return IsType(err, ErrorTypeNoArticleAvailable)
}

// IsNoLinksFound checks if a seed category came back empty
func IsNoLinksFound(err error) bool {
	return IsType(err, ErrorTypeNoLinksFound)
}
