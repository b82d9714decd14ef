package errors

import (
	"errors"
	"fmt"
)

// WordexError is the structured error type for wordex.
// It provides rich context for error handling, logging, and user presentation.
type WordexError struct {
	// Code is the unique error code (e.g., "ERR_204_INDEX_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Parse, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *WordexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *WordexError) Unwrap() error {
	return e.Cause
}

// Is matches another WordexError by code.
func (e *WordexError) Is(target error) bool {
	if t, ok := target.(*WordexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *WordexError) WithDetail(key, value string) *WordexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *WordexError) WithSuggestion(suggestion string) *WordexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new WordexError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *WordexError {
	return &WordexError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a WordexError from an existing error.
// The error's message becomes the WordexError message.
func Wrap(code string, err error) *WordexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *WordexError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *WordexError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ParseError creates a script syntax error.
func ParseError(message string, cause error) *WordexError {
	return New(ErrCodeSyntax, message, cause)
}

// EvalError creates a statement execution error.
func EvalError(message string, cause error) *WordexError {
	return New(ErrCodeEvalFailed, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *WordexError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first WordexError in err's chain.
func As(err error) (*WordexError, bool) {
	var we *WordexError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if we, ok := As(err); ok {
		return we.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if we, ok := As(err); ok {
		return we.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a WordexError.
// Returns empty string if not a WordexError.
func GetCode(err error) string {
	if we, ok := As(err); ok {
		return we.Code
	}
	return ""
}

// GetCategory extracts the category from a WordexError.
func GetCategory(err error) Category {
	if we, ok := As(err); ok {
		return we.Category
	}
	return ""
}
