package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Structural errors (documents and the link graph)
	ErrConfigRead  ErrorCode = "CONFIG_READ"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrLinkResolve ErrorCode = "LINK_RESOLVE"

	// Variable errors
	ErrVarName       ErrorCode = "VAR_NAME"
	ErrVarDuplicate  ErrorCode = "VAR_DUPLICATE"
	ErrVarCycle      ErrorCode = "VAR_CYCLE"
	ErrVarUndefined  ErrorCode = "VAR_UNDEFINED"
	ErrVarEnvMissing ErrorCode = "VAR_ENV_MISSING"

	// Command and hook errors
	ErrCommandRun      ErrorCode = "COMMAND_RUN"
	ErrCommandDeclined ErrorCode = "COMMAND_DECLINED"
	ErrHookFailed      ErrorCode = "HOOK_FAILED"
	ErrHookStage       ErrorCode = "HOOK_STAGE"

	// Apply pipeline errors
	ErrValidation    ErrorCode = "VALIDATION"
	ErrApplyDeclined ErrorCode = "APPLY_DECLINED"
	ErrBackup        ErrorCode = "BACKUP"
	ErrStoreRead     ErrorCode = "STORE_READ"
	ErrStoreWrite    ErrorCode = "STORE_WRITE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"

	// Interaction errors
	ErrPromptUnavailable ErrorCode = "PROMPT_UNAVAILABLE"
)

// TypewriterError represents a structured error with code and details
type TypewriterError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TypewriterError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TypewriterError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *TypewriterError) Is(target error) bool {
	var targetErr *TypewriterError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new TypewriterError with the given code and message
func New(code ErrorCode, message string) *TypewriterError {
	return &TypewriterError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TypewriterError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TypewriterError {
	return &TypewriterError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TypewriterError
func Wrap(err error, code ErrorCode, message string) *TypewriterError {
	if err == nil {
		return nil
	}
	return &TypewriterError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TypewriterError {
	if err == nil {
		return nil
	}
	return &TypewriterError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *TypewriterError) WithDetail(key string, value interface{}) *TypewriterError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var twErr *TypewriterError
	if errors.As(err, &twErr) {
		return twErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a TypewriterError
func GetErrorCode(err error) ErrorCode {
	var twErr *TypewriterError
	if errors.As(err, &twErr) {
		return twErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a TypewriterError
func GetErrorDetails(err error) map[string]interface{} {
	var twErr *TypewriterError
	if errors.As(err, &twErr) {
		return twErr.Details
	}
	return nil
}
