package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the stage of initialization an error belongs to
type ErrorType string

const (
	ErrorTypeResolution ErrorType = "resolution"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInstall    ErrorType = "install"
)

// ErrorSeverity represents the severity level of errors
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"      // The caller can continue with defaults
	SeverityMedium   ErrorSeverity = "medium"   // A requested destination is unusable
	SeverityHigh     ErrorSeverity = "high"     // Nothing was installed
	SeverityCritical ErrorSeverity = "critical" // Process-wide logging state is inconsistent
)

// AppError represents a structured initialization error
type AppError struct {
	Type     ErrorType     `json:"type"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Details  string        `json:"details,omitempty"`
	Severity ErrorSeverity `json:"severity"`
	Cause    error         `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap implements the Unwrap interface for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errorType ErrorType, code string, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Severity: SeverityMedium,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errorType ErrorType, code string, message string) *AppError {
	appErr := New(errorType, code, message)
	appErr.Cause = err
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// WithSeverity sets the severity level of an error
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to an error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// As reports whether err carries an *AppError and returns it.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errorType
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
