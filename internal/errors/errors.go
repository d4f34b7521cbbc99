// Package errors provides custom error types for the Taxigest API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Daily record errors.
var (
	ErrRecordNotFound    = &AppError{Code: "RECORD_NOT_FOUND", Message: "Daily record not found", StatusCode: http.StatusNotFound}
	ErrInvalidKmRange    = &AppError{Code: "INVALID_KM_RANGE", Message: "End kilometers must not be less than start kilometers", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount    = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Monetary amounts must not be negative", StatusCode: http.StatusBadRequest}
	ErrInvalidCommission = &AppError{Code: "INVALID_COMMISSION_MODE", Message: "Unsupported commission mode", StatusCode: http.StatusBadRequest}
)

// Expense errors.
var (
	ErrExpenseNotFound      = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrRecurrenceIncomplete = &AppError{Code: "RECURRENCE_INCOMPLETE", Message: "Recurring expenses require a frequency and next due date", StatusCode: http.StatusBadRequest}
	ErrNotRecurring         = &AppError{Code: "NOT_RECURRING", Message: "Expense is not recurring", StatusCode: http.StatusBadRequest}
)

// Payroll errors.
var (
	ErrPayrollNotFound      = &AppError{Code: "PAYROLL_NOT_FOUND", Message: "Payroll not found", StatusCode: http.StatusNotFound}
	ErrPayrollPeriodOverlap = &AppError{Code: "PAYROLL_PERIOD_OVERLAP", Message: "A payroll for this driver already covers part of the period", StatusCode: http.StatusConflict}
	ErrPayrollAlreadyPaid   = &AppError{Code: "PAYROLL_ALREADY_PAID", Message: "Payroll has already been marked as paid", StatusCode: http.StatusConflict}
)

// Settings errors.
var (
	ErrSettingNotFound = &AppError{Code: "SETTING_NOT_FOUND", Message: "Setting not found", StatusCode: http.StatusNotFound}
	ErrInvalidSetting  = &AppError{Code: "INVALID_SETTING", Message: "Invalid setting value", StatusCode: http.StatusBadRequest}
)
