package domain

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeCleanup    ErrorType = "cleanup"
	ErrorTypeConfig     ErrorType = "config"
)

// Sentinel causes carried by validation errors.
var (
	ErrSelectionEmpty     = errors.New("no valid pages specified")
	ErrInsufficientInputs = errors.New("at least 2 documents are required")
	ErrMissingSecret      = errors.New("password is required")
	ErrNoImages           = errors.New("no images uploaded")
	ErrMissingDocument    = errors.New("document is required")
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

// ProcessingError attaches a stack to the cause so the logger can render it.
func ProcessingError(message string, err error) *DomainError {
	return NewError(ErrorTypeProcessing, message, withStack(err))
}

func StorageError(message string, err error) *DomainError {
	return NewError(ErrorTypeStorage, message, withStack(err))
}

func CleanupError(message string, err error) *DomainError {
	return NewError(ErrorTypeCleanup, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// TypeOf returns the ErrorType of the first DomainError in err's chain, or
// the empty string if there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func withStack(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(err)
}
