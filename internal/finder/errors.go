package finder

import (
	"errors"
	"strings"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/query"
	"github.com/Aman-CERP/wordex/internal/script"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// mapError converts a statement failure to a coded error.
func mapError(err error) *werrors.WordexError {
	if err == nil {
		return nil
	}
	if we, ok := werrors.As(err); ok {
		return we
	}

	var syntaxErr *script.SyntaxError
	var parseErr *query.ParseError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &parseErr):
		return werrors.Wrap(werrors.ErrCodeSyntax, err)
	case errors.Is(err, query.ErrUnresolved):
		return werrors.Wrap(werrors.ErrCodeUnresolvedWord, err).
			WithSuggestion("Use startsWith(prefix) to list indexed words")
	case errors.Is(err, query.ErrDuplicateName):
		return werrors.Wrap(werrors.ErrCodeDuplicateName, err).
			WithSuggestion("Variables cannot be reassigned; choose a new name")
	case errors.Is(err, query.ErrUnknownFunction):
		return werrors.Wrap(werrors.ErrCodeUnknownFunction, err).
			WithSuggestion("Available functions: " + strings.Join(Functions, ", "))
	case errors.Is(err, ErrNotExpression):
		return werrors.Wrap(werrors.ErrCodeInvalidCommand, err)
	case errors.Is(err, ErrNoValue):
		return werrors.Wrap(werrors.ErrCodeInvalidCommand, err).
			WithSuggestion("Call it on a line of its own")
	case errors.Is(err, sortedset.ErrCapacity):
		return werrors.Wrap(werrors.ErrCodeSetCapacity, err)
	case errors.Is(err, sortedset.ErrOrdering):
		return werrors.Wrap(werrors.ErrCodeSetOrdering, err)
	case errors.Is(err, index.ErrCorrupt):
		return werrors.Wrap(werrors.ErrCodeCorruptIndex, err).
			WithSuggestion("Rebuild the index with 'wordex build'")
	default:
		return werrors.Wrap(werrors.ErrCodeEvalFailed, err)
	}
}
