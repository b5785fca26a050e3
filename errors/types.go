package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Resolution errors
	ErrCodeNoArchive ErrorCode = "NO_ARCHIVE"

	// Precondition errors
	ErrCodeFolderMissing  ErrorCode = "FOLDER_MISSING"
	ErrCodeNotRepository  ErrorCode = "NOT_REPOSITORY"
	ErrCodeArchiveMissing ErrorCode = "ARCHIVE_MISSING"

	// External state transition errors
	ErrCodeCheckoutFailed ErrorCode = "CHECKOUT_FAILED"
	ErrCodeMergeFailed    ErrorCode = "MERGE_FAILED"
	ErrCodeParse          ErrorCode = "PARSE_ERROR"

	// Archive errors
	ErrCodePackFailed    ErrorCode = "PACK_FAILED"
	ErrCodeExtractFailed ErrorCode = "EXTRACT_FAILED"
	ErrCodeVerifyFailed  ErrorCode = "VERIFY_FAILED"

	// Concurrency errors
	ErrCodeLocked ErrorCode = "LOCKED"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// RnsError represents a structured error with context
type RnsError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *RnsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RnsError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *RnsError) WithDetail(key string, value interface{}) *RnsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *RnsError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new RnsError
func New(code ErrorCode, message string) *RnsError {
	return &RnsError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RnsError
func Wrap(err error, code ErrorCode, message string) *RnsError {
	return &RnsError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is, or wraps, a RnsError with the given code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, searching the wrap chain
// until the first RnsError.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	rnsErr, ok := err.(*RnsError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return rnsErr.Code
}

// As returns the first RnsError in the wrap chain.
func As(err error) (*RnsError, bool) {
	for err != nil {
		if rnsErr, ok := err.(*RnsError); ok {
			return rnsErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
