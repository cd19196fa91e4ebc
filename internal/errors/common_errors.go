package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNetwork      ErrorType = "NETWORK"
	ErrTypeEmptyResult  ErrorType = "EMPTY_RESULT"
	ErrTypePartialFetch ErrorType = "PARTIAL_FETCH"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// Process exit codes, one per fatal error kind.
const (
	ExitOK          = 0
	ExitUnknown     = 1
	ExitNetwork     = 2
	ExitEmptyResult = 3
	ExitParsing     = 4
	ExitStorage     = 5
	ExitConfig      = 6
	ExitValidation  = 7
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates an input validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewEmptyResultError reports a search that matched no organizations
func NewEmptyResultError(message string) *AppError {
	return NewAppError(ErrTypeEmptyResult, message, nil)
}

// NewPartialFetchError reports a single organization whose detail could not be loaded.
// It never aborts a run.
func NewPartialFetchError(agencyID int64, cause error) *AppError {
	return NewAppError(ErrTypePartialFetch, "organization detail unavailable", cause).
		WithContext("agency_id", agencyID)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// ExitCode maps an error to the process exit status for its kind.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch TypeOf(err) {
	case ErrTypeNetwork:
		return ExitNetwork
	case ErrTypeEmptyResult:
		return ExitEmptyResult
	case ErrTypeParsing:
		return ExitParsing
	case ErrTypeStorage:
		return ExitStorage
	case ErrTypeConfig:
		return ExitConfig
	case ErrTypeValidation:
		return ExitValidation
	default:
		return ExitUnknown
	}
}
