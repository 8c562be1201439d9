// Package apperror provides structured error handling for the posting platform.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (409/422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeAlreadyPosted          = "DOCUMENT_ALREADY_POSTED"
	CodeAlreadyConfirmed       = "COSTING_ALREADY_CONFIRMED"
	CodeDuplicatePosting       = "DUPLICATE_POSTING"
	CodeDocumentCancelled      = "DOCUMENT_CANCELLED"
	CodeInvalidTransition      = "INVALID_STATE_TRANSITION"
	CodeInvalidAccountMapping  = "INVALID_ACCOUNT_MAPPING"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeLockTimeout            = "LOCK_TIMEOUT"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Retryable marks failures that consumed no effect and can be resubmitted
	Retryable bool `json:"retryable,omitempty"`

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

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAlreadyPosted creates a state-conflict error for a document whose
// posting effects already exist (409).
func NewAlreadyPosted(documentID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyPosted,
		Message:    "Document is already posted",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_id": documentID},
	}
}

// NewAlreadyConfirmed creates a state-conflict error for repeated cost confirmation (409).
func NewAlreadyConfirmed(documentID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyConfirmed,
		Message:    "Costing is already confirmed for this purchase",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_id": documentID},
	}
}

// NewDuplicatePosting rejects a repeat posting of a document whose posted flag is already set (409).
func NewDuplicatePosting(documentID any) *AppError {
	return &AppError{
		Code:       CodeDuplicatePosting,
		Message:    "Document is already posted; duplicate posting rejected",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_id": documentID},
	}
}

// NewDocumentCancelled is returned when a posting action targets a cancelled document (409).
func NewDocumentCancelled(documentID any) *AppError {
	return &AppError{
		Code:       CodeDocumentCancelled,
		Message:    "Document is cancelled",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_id": documentID},
	}
}

// NewInvalidTransition creates a state machine violation error (409).
func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("Transition %s -> %s is not permitted", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewInvalidAccountMapping is a hard precondition failure for a missing
// ledger account binding. Never silently defaulted.
func NewInvalidAccountMapping(code string) *AppError {
	return &AppError{
		Code:       CodeInvalidAccountMapping,
		Message:    "Ledger account mapping is missing",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"account_code": code},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(itemID string, requested, available float64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"item_id":   itemID,
			"requested": requested,
			"available": available,
		},
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

// NewLockTimeout creates a retryable lock contention error (409).
// No sequence number or posting effect is consumed on this failure.
func NewLockTimeout(resource string) *AppError {
	return &AppError{
		Code:       CodeLockTimeout,
		Message:    "Could not acquire lock, retry the operation",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"resource": resource},
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

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
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
	return HasCode(err, CodeNotFound)
}

// IsStateConflict reports whether err is one of the posting state conflicts.
func IsStateConflict(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Code {
		case CodeAlreadyPosted, CodeAlreadyConfirmed, CodeDuplicatePosting,
			CodeDocumentCancelled, CodeInvalidTransition:
			return true
		}
	}
	return false
}

// IsRetryable reports whether the caller may safely resubmit the operation.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// HasCode checks if error carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
