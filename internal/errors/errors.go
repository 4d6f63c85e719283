package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeLoad           = "LOAD_ERROR"
	ErrCodeNoQuestions    = "NO_QUESTIONS_AVAILABLE"
	ErrCodeNoMatch        = "NO_QUESTIONS_FOUND"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "NO_QUESTIONS_AVAILABLE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewLoadError creates a LOAD_ERROR wrapping a corpus fetch or parse failure
func NewLoadError(source string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeLoad,
		Message: fmt.Sprintf("failed to load questions from %s", source),
		Status:  502,
		Err:     err,
	}
}

// NewNoQuestionsError signals that no questions could be loaded from any source
func NewNoQuestionsError() *AppError {
	return &AppError{
		Code:    ErrCodeNoQuestions,
		Message: "no questions available",
		Status:  503,
	}
}

// NewNoMatchError signals that the active filters matched nothing
func NewNoMatchError() *AppError {
	return &AppError{
		Code:    ErrCodeNoMatch,
		Message: "no questions match the requested filters",
		Status:  404,
	}
}
