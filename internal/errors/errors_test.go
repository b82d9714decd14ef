package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordexError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with WordexError
	we := New(ErrCodeIndexNotFound, "index not found: book.conw", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, we)
	assert.Equal(t, originalErr, errors.Unwrap(we))
	assert.True(t, errors.Is(we, originalErr))
}

func TestWordexError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "syntax error",
			code:     ErrCodeSyntax,
			message:  "parenthesis not closed",
			expected: "[ERR_301_SYNTAX] parenthesis not closed",
		},
		{
			name:     "eval error",
			code:     ErrCodeUnresolvedWord,
			message:  "ferret",
			expected: "[ERR_401_UNRESOLVED_WORD] ferret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestWordexError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeIndexLocked, "locked by pid 10", nil)
	err2 := New(ErrCodeIndexLocked, "locked by pid 11", nil)
	other := New(ErrCodeConfigNotFound, "config not found", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, other))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{code: ErrCodeConfigInvalid, category: CategoryConfig, severity: SeverityError},
		{code: ErrCodeCorruptIndex, category: CategoryIO, severity: SeverityFatal},
		{code: ErrCodeIndexLocked, category: CategoryIO, severity: SeverityWarning, retryable: true},
		{code: ErrCodeSyntax, category: CategoryParse, severity: SeverityWarning},
		{code: ErrCodeDuplicateName, category: CategoryEval, severity: SeverityWarning},
		{code: ErrCodeSetOrdering, category: CategoryInternal, severity: SeverityFatal},
		{code: ErrCodeBuildFailed, category: CategoryInternal, severity: SeverityError},
		{code: "BAD", category: CategoryInternal, severity: SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestWordexError_WithDetail(t *testing.T) {
	err := New(ErrCodeFileNotFound, "missing", nil).
		WithDetail("path", "/tmp/a.txt").
		WithSuggestion("check the path")

	assert.Equal(t, "/tmp/a.txt", err.Details["path"])
	assert.Equal(t, "check the path", err.Suggestion)
}

func TestHelpers_SeeThroughWrapping(t *testing.T) {
	// Given: a WordexError wrapped by fmt.Errorf
	inner := New(ErrCodeIndexLocked, "busy", nil)
	err := fmt.Errorf("build: %w", inner)

	// Then: the helpers find it in the chain
	assert.Equal(t, ErrCodeIndexLocked, GetCode(err))
	assert.Equal(t, CategoryIO, GetCategory(err))
	assert.True(t, IsRetryable(err))
	assert.False(t, IsFatal(err))

	// And: plain errors yield zero values
	plain := errors.New("plain")
	assert.Empty(t, GetCode(plain))
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsFatal(nil))
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}
