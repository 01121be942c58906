package errors

import (
	stderrors "errors"
	"fmt"
)

// TomeError is the structured error type for tome.
// It provides context for error handling, logging, and user presentation.
type TomeError struct {
	// Code is the unique error code (e.g., "ERR_301_INDEX_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Index, Query, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *TomeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TomeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with TomeError.
func (e *TomeError) Is(target error) bool {
	if t, ok := target.(*TomeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *TomeError) WithDetail(key, value string) *TomeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *TomeError) WithSuggestion(suggestion string) *TomeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new TomeError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *TomeError {
	return &TomeError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new TomeError with a formatted message.
func Newf(code string, format string, args ...any) *TomeError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a TomeError from an existing error.
// The error's message becomes the TomeError message.
func Wrap(code string, err error) *TomeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IndexNotFound reports an unknown corpus name.
func IndexNotFound(name string) *TomeError {
	return Newf(ErrCodeIndexNotFound, "no index named %q", name).
		WithDetail("index", name).
		WithSuggestion("run 'tome list' to see available indices")
}

// IndexCorrupt reports an unreadable index store.
func IndexCorrupt(name string, cause error) *TomeError {
	return New(ErrCodeIndexCorrupt, fmt.Sprintf("index %q is unreadable", name), cause).
		WithDetail("index", name).
		WithSuggestion("run 'tome reload " + name + "' to rebuild it")
}

// QueryParse reports a malformed query, identifying the offending fragment.
func QueryParse(fragment, reason string) *TomeError {
	return Newf(ErrCodeQueryParse, "cannot parse query near %q: %s", fragment, reason).
		WithDetail("fragment", fragment)
}

// QueryUnsupported reports a query combination the engine rejects,
// e.g. phrase or boolean syntax inside fuzzy mode.
func QueryUnsupported(reason string) *TomeError {
	return New(ErrCodeQueryUnsupported, reason, nil)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *TomeError {
	return New(ErrCodeIO, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *TomeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *TomeError {
	return New(ErrCodeInternal, message, cause)
}

// GetCode extracts the error code from a TomeError anywhere in the chain.
// Returns empty string if no TomeError is present.
func GetCode(err error) string {
	var te *TomeError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return ""
}

// GetCategory extracts the category from a TomeError anywhere in the chain.
// Returns CategoryInternal if no TomeError is present.
func GetCategory(err error) Category {
	var te *TomeError
	if stderrors.As(err, &te) {
		return te.Category
	}
	return CategoryInternal
}

// ExitCode maps an error to the process exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeIndexNotFound:
		return ExitNotFound
	case ErrCodeQueryParse, ErrCodeQueryUnsupported:
		return ExitQuery
	case ErrCodeIndexCorrupt:
		return ExitCorruptIndex
	case ErrCodeIO, ErrCodeRegistryWrite, ErrCodeConfigInvalid, ErrCodeIndexExists:
		return ExitIO
	default:
		return ExitInternal
	}
}
