package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, line string) *Statement {
	t.Helper()
	st, err := ParseLine(line)
	require.NoError(t, err, line)
	require.NotNil(t, st, line)
	return st
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "cat & dog", want: "( cat & dog )"},
		{line: "a | b & c", want: "( a | ( b & c ) )"},
		{line: "a & b | c", want: "( ( a & b ) | c )"},
		{line: "a ^ b & c", want: "( a ^ ( b & c ) )"},
		{line: "a | b ^ c", want: "( a | ( b ^ c ) )"},
		{line: "a - b | c", want: "( a - ( b | c ) )"},
		{line: "a - b - c", want: "( ( a - b ) - c )"},
		{line: "a & b & c", want: "( a & b & c )"},
		{line: "(a | b) & c", want: "( ( a | b ) & c )"},
		{line: "a ^ b ^ c", want: "oddParity( a, b, c )"},
		{line: "((a))", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			st := mustParse(t, tt.line)
			assert.Equal(t, tt.want, st.Command.String())
		})
	}
}

func TestParse_StatementKinds(t *testing.T) {
	t.Run("assignment", func(t *testing.T) {
		st := mustParse(t, "pets = cat | dog")
		a, ok := st.Command.(*Assign)
		require.True(t, ok)
		assert.Equal(t, "pets", a.Name)
		assert.Equal(t, "( cat | dog )", a.Value.String())
	})

	t.Run("whole line call is a function call", func(t *testing.T) {
		st := mustParse(t, "list(cat & dog)")
		f, ok := st.Command.(*FunctionCall)
		require.True(t, ok)
		assert.Equal(t, "list", f.Name)
		require.Len(t, f.Args, 1)
	})

	t.Run("call inside an expression", func(t *testing.T) {
		st := mustParse(t, "prefix(ca) & dog")
		c, ok := st.Command.(*Combine)
		require.True(t, ok)
		_, isCall := c.Args[0].(*Call)
		assert.True(t, isCall)
	})

	t.Run("whole line built-in is an expression", func(t *testing.T) {
		st := mustParse(t, "and(cat, dog)")
		_, ok := st.Command.(Expr)
		assert.True(t, ok)
	})

	t.Run("blank and comment lines", func(t *testing.T) {
		for _, line := range []string{"", "   ", "// nothing"} {
			st, err := ParseLine(line)
			require.NoError(t, err)
			assert.Nil(t, st)
		}
	})
}

func TestParse_Builtins(t *testing.T) {
	tests := []struct {
		line     string
		want     string
		warnings int
	}{
		{line: "and(a, b, c)", want: "( a & b & c )"},
		{line: "or(a, b)", want: "( a | b )"},
		{line: "xor(a, b)", want: "( a ^ b )"},
		{line: "oddParity(a, b, c)", want: "oddParity( a, b, c )"},
		{line: "atLeast2(a, b, c)", want: "atLeast2( a, b, c )"},
		{line: "atLeast3(a, b, c)", want: "( a & b & c )", warnings: 1},
		{line: "atLeast4(a, b, c)", want: "empty()", warnings: 1},
		{line: "exactly1(a, b)", want: "exactly1( a, b )"},
		{line: "exactly2(a, b)", want: "( a & b )", warnings: 1},
		{line: "exactly3(a, b)", want: "empty()", warnings: 1},
		{line: "integer(3, 1, 3, 0)", want: "integer(1,3)"},
		{line: "empty()", want: "empty()"},
		{line: "range(1, 10)", want: "range(1,10)"},
		{line: "range(1, 10, 3)", want: "range(1,10,3)"},
		{line: `range("-4", 10, 3)`, want: `range("-4",10,3)`},
		{line: "or(a, b,)", want: "( a | b )"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			st := mustParse(t, tt.line)
			assert.Equal(t, tt.want, st.Command.String())
			assert.Len(t, st.Warnings, tt.warnings)
		})
	}
}

func TestParse_AtLeastOneIsNotBuiltin(t *testing.T) {
	// Given: a name that looks like a threshold but has no built-in meaning
	st := mustParse(t, "atLeast1(a, b)")

	// Then: it is forwarded to the context as a function call
	_, ok := st.Command.(*FunctionCall)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		line    string
		message string
	}{
		{line: "& a", message: "must follow an expression"},
		{line: "a &", message: "must not be the first or last token"},
		{line: "a - ", message: "must not be the first or last token"},
		{line: "a & & b", message: "must precede an expression"},
		{line: "a b", message: "could not reduce"},
		{line: "()", message: "empty"},
		{line: "and(a)", message: "at least two arguments"},
		{line: "xor(a, b, c)", message: "exactly two arguments"},
		{line: "empty(a)", message: "zero arguments"},
		{line: "integer(a)", message: "not a valid integer literal"},
		{line: "integer(99999999999)", message: "not a valid integer literal"},
		{line: "range(1)", message: "2-3 arguments"},
		{line: "range(5, 1)", message: "greater than or equal"},
		{line: "range(1, 5, 0)", message: "step cannot be less than 1"},
		{line: "or(a,,b)", message: "empty"},
		{line: "; a", message: "unexpected operator"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Msg, tt.message)
		})
	}
}

func TestParse_StringRoundTrip(t *testing.T) {
	lines := []string{
		"a | b & c - d",
		"x = atLeast2(a, b ^ c, integer(4, 9))",
		`"two words" & range("-3", 7, 2)`,
		"list(prefix(ca) - exactly1(a, b, c))",
		"save()",
		"oddParity(a, b, c) | empty()",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			// Given: a parsed statement
			first := mustParse(t, line)

			// When: its script form is parsed again
			second := mustParse(t, first.Command.String())

			// Then: both render identically
			assert.Equal(t, first.Command.String(), second.Command.String())
		})
	}
}
