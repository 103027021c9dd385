// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Error codes following the returns domain taxonomy.
const (
	// Infrastructure errors (5xx)
	CodeInternal          = "INTERNAL_ERROR"
	CodeDatabase          = "DATABASE_ERROR"
	CodeTransactionFailed = "TRANSACTION_FAILED"

	// Validation errors (400, 422)
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeReturnValidation = "RETURN_VALIDATION"

	// Business preconditions
	CodeAuthorizationRequired = "AUTHORIZATION_REQUIRED"
	CodeReturnWindowClosed    = "RETURN_WINDOW_CLOSED"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict               = "CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError is the standard error type for the service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewReturnValidation creates a return-rule violation error (422).
// The accumulated user-facing messages are carried in details["errors"]
// so the caller can display every problem at once.
func NewReturnValidation(errs []string) *AppError {
	return &AppError{
		Code:       CodeReturnValidation,
		Message:    "Return validation failed",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"errors": errs},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewAuthorizationRequired signals that the refund total exceeds the
// manager-PIN threshold and the caller must re-submit with manager credentials.
func NewAuthorizationRequired(total, threshold decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeAuthorizationRequired,
		Message:    "Manager authorization required for this refund amount",
		HTTPStatus: http.StatusForbidden,
		Details: map[string]any{
			"refund_total": total.StringFixed(2),
			"threshold":    threshold.StringFixed(2),
		},
	}
}

// NewTransactionFailed wraps any database-layer failure during commit.
// The attempt was rolled back entirely, so retrying with the same input is safe.
func NewTransactionFailed(err error) *AppError {
	return &AppError{
		Code:       CodeTransactionFailed,
		Message:    "Failed to create return transaction",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsReturnValidation checks if error is CodeReturnValidation
func IsReturnValidation(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeReturnValidation
	}
	return false
}

// ValidationErrors extracts the accumulated message list from a
// CodeReturnValidation error, or nil for any other error.
func ValidationErrors(err error) []string {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != CodeReturnValidation {
		return nil
	}
	if errs, ok := appErr.Details["errors"].([]string); ok {
		return errs
	}
	return nil
}
