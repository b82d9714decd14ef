// Package errors provides structured error handling for wordex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (documents, index files, locks)
//   - 3XX: Script parse errors
//   - 4XX: Evaluation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryParse indicates a script statement that could not be parsed.
	CategoryParse Category = "PARSE"
	// CategoryEval indicates a statement that failed while executing.
	CategoryEval Category = "EVAL"
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
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
	ErrCodeSkipListInvalid  = "ERR_104_SKIP_LIST_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull       = "ERR_203_DISK_FULL"
	ErrCodeIndexNotFound  = "ERR_204_INDEX_NOT_FOUND"
	ErrCodeCorruptIndex   = "ERR_205_CORRUPT_INDEX"
	ErrCodeIndexLocked    = "ERR_206_INDEX_LOCKED"
	ErrCodeExtractFailed  = "ERR_207_EXTRACT_FAILED"

	// Parse errors (300-399)
	ErrCodeSyntax         = "ERR_301_SYNTAX"
	ErrCodeInvalidCommand = "ERR_302_INVALID_COMMAND"

	// Eval errors (400-499)
	ErrCodeUnresolvedWord  = "ERR_401_UNRESOLVED_WORD"
	ErrCodeDuplicateName   = "ERR_402_DUPLICATE_NAME"
	ErrCodeUnknownFunction = "ERR_403_UNKNOWN_FUNCTION"
	ErrCodeEvalFailed      = "ERR_404_EVAL_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeSetOrdering   = "ERR_502_SET_ORDERING"
	ErrCodeSetCapacity   = "ERR_503_SET_CAPACITY"
	ErrCodeBuildFailed   = "ERR_504_BUILD_FAILED"
	ErrCodeHistoryFailed = "ERR_505_HISTORY_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryParse
	case '4':
		return CategoryEval
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex, ErrCodeDiskFull, ErrCodeSetOrdering, ErrCodeSetCapacity:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	// Statement-level failures leave the session usable.
	switch categoryFromCode(code) {
	case CategoryParse, CategoryEval:
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	return code == ErrCodeIndexLocked
}
