package script

import "strings"

// Token is one lexical element of a script line. It is one of Word,
// Operator or Group.
type Token interface {
	token()

	// String renders the token back as script text.
	String() string
}

// Word is a run of word characters or the contents of a string literal.
type Word string

// Operator is any single non-word, non-space character outside a literal.
type Operator rune

// Group holds the tokens between a matching pair of parentheses.
type Group []Token

func (Word) token()     {}
func (Operator) token() {}
func (Group) token()    {}

func (w Word) String() string { return DefaultFormat.LiteralIfNeeded(string(w)) }

func (o Operator) String() string { return string(rune(o)) }

func (g Group) String() string {
	if len(g) == 0 {
		return "()"
	}
	return "( " + Join(g) + " )"
}

// Join renders tokens as script text separated by single spaces. Parsing
// the result yields an equivalent token sequence.
func Join(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// SplitCommas splits tokens at top-level ',' operators. An empty input
// yields no parts; a trailing comma is ignored.
func SplitCommas(tokens []Token) [][]Token {
	var parts [][]Token
	start := 0
	for i, t := range tokens {
		if op, ok := t.(Operator); ok && op == ',' {
			parts = append(parts, tokens[start:i])
			start = i + 1
		}
	}
	if start != len(tokens) {
		parts = append(parts, tokens[start:])
	}
	return parts
}
