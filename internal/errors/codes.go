// Package errors provides structured error handling for tome.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and storage errors
//   - 3XX: Index lifecycle errors
//   - 4XX: Query errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryIndex indicates index lifecycle errors (missing, corrupt, build).
	CategoryIndex Category = "INDEX"
	// CategoryQuery indicates query parsing or evaluation errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"

	// IO and storage errors (200-299)
	ErrCodeIO            = "ERR_201_IO"
	ErrCodeRegistryWrite = "ERR_202_REGISTRY_WRITE"

	// Index lifecycle errors (300-399)
	ErrCodeIndexNotFound    = "ERR_301_INDEX_NOT_FOUND"
	ErrCodeIndexExists      = "ERR_302_INDEX_EXISTS"
	ErrCodeIndexCorrupt     = "ERR_303_INDEX_CORRUPT"
	ErrCodeExtractionFailed = "ERR_304_EXTRACTION_FAILED"
	ErrCodeBuildAborted     = "ERR_305_BUILD_ABORTED"

	// Query errors (400-499)
	ErrCodeQueryParse       = "ERR_401_QUERY_PARSE"
	ErrCodeQueryUnsupported = "ERR_402_QUERY_UNSUPPORTED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// Process exit codes per category of failure. The CLI maps a returned error
// to exactly one of these so callers can distinguish "not found" from
// "parse error" from "I/O failure".
const (
	ExitOK           = 0
	ExitInternal     = 1
	ExitNotFound     = 2
	ExitQuery        = 3
	ExitIO           = 4
	ExitCorruptIndex = 5
)

// categoryFromCode derives the category from an error code prefix.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryIndex
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from an error code.
// Extraction failures are warnings: the build records and continues.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeExtractionFailed:
		return SeverityWarning
	case ErrCodeIndexCorrupt, ErrCodeInternal:
		return SeverityFatal
	default:
		return SeverityError
	}
}
