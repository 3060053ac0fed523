package domain

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeEmptyInput        = "EMPTY_INPUT"
	ErrCodeInvalidParameter  = "INVALID_PARAMETER"
	ErrCodeUnknownDocument   = "UNKNOWN_DOCUMENT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeStorageError      = "STORAGE_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewStorageError creates a run history storage error
func NewStorageError(message string, cause error) error {
	return NewDomainError(ErrCodeStorageError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// FromCoreError wraps an error from the signature or clustering engine in a
// DomainError whose code matches the engine's sentinel. Other errors become
// analysis errors.
func FromCoreError(message string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, minhash.ErrEmptyInput):
		return NewDomainError(ErrCodeEmptyInput, message, err)
	case errors.Is(err, minhash.ErrInvalidParameter), errors.Is(err, minhash.ErrBuilderConsumed):
		return NewDomainError(ErrCodeInvalidParameter, message, err)
	case errors.Is(err, minhash.ErrUnknownDocument):
		return NewDomainError(ErrCodeUnknownDocument, message, err)
	default:
		return NewAnalysisError(message, err)
	}
}

// ErrorCode extracts the DomainError code from err, or "" if there is none.
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
