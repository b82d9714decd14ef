package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SyntaxError reports a problem tokenizing a line.
type SyntaxError struct {
	Msg  string
	Col  int
	Line string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d: %s\nline: %s", e.Col, e.Msg, e.Line)
}

// Tokenizer splits script lines into tokens.
type Tokenizer struct {
	format Format
}

// NewTokenizer returns a tokenizer for the given format.
func NewTokenizer(format Format) (*Tokenizer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Tokenizer{format: format}, nil
}

var defaultTokenizer = &Tokenizer{format: DefaultFormat}

// Tokenize splits line with DefaultFormat.
func Tokenize(line string) ([]Token, error) {
	return defaultTokenizer.Tokenize(line)
}

// IsBlank reports whether line holds no statement: only whitespace or a
// comment.
func (t *Tokenizer) IsBlank(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || t.format.commentAt(trimmed, 0)
}

// Tokenize splits one line into words, operators and parenthesized groups.
// A blank or comment-only line yields nil tokens and no error.
func (t *Tokenizer) Tokenize(line string) ([]Token, error) {
	f := t.format
	fail := func(col int, format string, args ...any) error {
		return &SyntaxError{Msg: fmt.Sprintf(format, args...), Col: col + 1, Line: line}
	}

	if t.IsBlank(line) {
		for _, r := range line {
			if f.IsIllegal(r) {
				return nil, fail(0, "character %q is not permitted", r)
			}
		}
		return nil, nil
	}

	var (
		flat      []Token
		cols      []int // byte offset of each token in flat
		word      strings.Builder
		wordStart int
		inLiteral bool
		litStart  int
	)
	flush := func() {
		if word.Len() > 0 {
			flat = append(flat, Word(word.String()))
			cols = append(cols, wordStart)
			word.Reset()
		}
	}

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])

		if inLiteral {
			if f.IsIllegalInLiteral(r) {
				return nil, fail(i, "character %q is not permitted in a literal", r)
			}
			switch r {
			case '"':
				flat = append(flat, Word(word.String()))
				cols = append(cols, litStart)
				word.Reset()
				inLiteral = false
				i += size
			case '\\':
				decoded, n, err := unescape(line[i+size:])
				if err != nil {
					return nil, fail(i, "%s", err)
				}
				word.WriteRune(decoded)
				i += size + n
			default:
				word.WriteRune(r)
				i += size
			}
			continue
		}

		switch {
		case f.IsIllegal(r):
			return nil, fail(i, "character %q is not permitted", r)
		case f.IsEmpty(r):
			flush()
		case f.IsWord(r):
			if word.Len() == 0 {
				wordStart = i
			}
			word.WriteRune(r)
		case r == '"':
			flush()
			inLiteral = true
			litStart = i
		case f.commentAt(line, i):
			flush()
			i = len(line)
			continue
		default:
			flush()
			flat = append(flat, Operator(r))
			cols = append(cols, i)
		}
		i += size
	}

	if inLiteral {
		return nil, fail(litStart, "unterminated string literal at end of line")
	}
	flush()

	tokens, at, err := group(flat)
	if err != nil {
		return nil, fail(cols[at], "%s", err)
	}
	return tokens, nil
}

// unescape decodes the escape sequence at the start of s (just after the
// backslash) and returns the rune and the number of bytes consumed.
func unescape(s string) (rune, int, error) {
	if s == "" {
		return 0, 0, fmt.Errorf("escape sequence at end of line")
	}
	switch s[0] {
	case 'b':
		return '\b', 1, nil
	case 't':
		return '\t', 1, nil
	case '0':
		return 0, 1, nil
	case 'n':
		return '\n', 1, nil
	case 'r':
		return '\r', 1, nil
	case '"':
		return '"', 1, nil
	case '\'':
		return '\'', 1, nil
	case '\\':
		return '\\', 1, nil
	case 'u':
		if len(s) < 5 {
			return 0, 0, fmt.Errorf("unicode escape must be \\u followed by four hex digits")
		}
		v, err := strconv.ParseUint(s[1:5], 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("unicode escape must be \\u followed by four hex digits")
		}
		return rune(v), 5, nil
	}
	r, _ := utf8.DecodeRuneInString(s)
	return 0, 0, fmt.Errorf("invalid escape sequence \\%c", r)
}

// group nests the tokens between matching '(' and ')' operators. On
// failure it also returns the index in flat of the offending parenthesis.
func group(flat []Token) ([]Token, int, error) {
	stack := [][]Token{nil}
	var opened []int
	for i, tok := range flat {
		op, isOp := tok.(Operator)
		switch {
		case isOp && op == '(':
			stack = append(stack, []Token{})
			opened = append(opened, i)
		case isOp && op == ')':
			if len(stack) == 1 {
				return nil, i, fmt.Errorf("close parenthesis without matching open parenthesis")
			}
			inner := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			opened = opened[:len(opened)-1]
			top := len(stack) - 1
			stack[top] = append(stack[top], Group(inner))
		default:
			top := len(stack) - 1
			stack[top] = append(stack[top], tok)
		}
	}
	if len(stack) != 1 {
		return nil, opened[len(opened)-1], fmt.Errorf("parenthesis not closed")
	}
	return stack[0], 0, nil
}
