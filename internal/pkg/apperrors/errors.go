package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role mismatch")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Entity specific not-found errors; all of them match ErrResourceNotFound.
var (
	ErrUserNotFound           = NewResourceNotFoundError("user not found")
	ErrStudentNotFound        = NewResourceNotFoundError("student not found")
	ErrTeacherNotFound        = NewResourceNotFoundError("teacher not found")
	ErrSubjectNotFound        = NewResourceNotFoundError("subject not found")
	ErrTeacherSubjectNotFound = NewResourceNotFoundError("teacher subject assignment not found")
	ErrTaskNotFound           = NewResourceNotFoundError("task not found")
	ErrSubmissionNotFound     = NewResourceNotFoundError("submission not found")
	ErrFileNotFound           = NewResourceNotFoundError("file not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a validation error naming the offending field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewRoleMismatchError reports a login attempt against the wrong role
func NewRoleMismatchError(message string) error {
	return &CustomError{
		Err:     ErrRoleMismatch,
		Message: message,
	}
}

// NewInvalidCredentialsError reports a credential that did not match
func NewInvalidCredentialsError(message string) error {
	return &CustomError{
		Err:     ErrInvalidCredentials,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
