package query

import (
	"fmt"

	"github.com/Aman-CERP/wordex/internal/script"
)

// Infix operators, from tightest to loosest binding.
const (
	andOperator   = '&'
	oddOperator   = '^'
	orOperator    = '|'
	minusOperator = '-'

	assignOperator = '='
)

var operatorNames = map[script.Operator]string{
	andOperator:   "And",
	oddOperator:   "Xor",
	orOperator:    "Or",
	minusOperator: "Minus",
}

// ParseError reports a statement that could not be turned into a command.
type ParseError struct {
	Msg  string
	Line string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return "parse error: " + e.Msg
	}
	return "parse error: " + e.Msg + "\nline: " + e.Line
}

// Statement is a parsed line.
type Statement struct {
	Command Command

	// Warnings note arguments that make a built-in degenerate, such as
	// atLeast3 over three operands.
	Warnings []string
}

// ParseLine tokenizes and parses one line. A blank or comment-only line
// yields a nil statement and no error.
func ParseLine(line string) (*Statement, error) {
	tokens, err := script.Tokenize(line)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, nil
	}
	return Parse(tokens)
}

// Parse builds a statement from the tokens of one line.
//
// A line of the form `name (args)` is a call: a built-in operator when name
// is one, otherwise a Context function. A line of the form `name = expr` is
// an assignment. Anything else must be a single expression.
func Parse(tokens []script.Token) (*Statement, error) {
	p := &parser{line: tokens}
	if len(tokens) == 0 {
		return nil, p.fail("expected to find an expression but it is empty")
	}

	var cmd Command
	var err error
	name, isWord := tokens[0].(script.Word)
	switch {
	case isWord && len(tokens) == 2 && isGroup(tokens[1]):
		cmd, err = p.call(string(name), tokens[1].(script.Group), true)
	case isWord && len(tokens) > 2 && isOperator(tokens[1], assignOperator):
		var value Expr
		value, err = p.expression(tokens[2:])
		cmd = &Assign{Name: string(name), Value: value}
	default:
		cmd, err = p.expression(tokens)
	}
	if err != nil {
		return nil, err
	}
	return &Statement{Command: cmd, Warnings: p.warnings}, nil
}

// ParseExpr parses tokens that must form a single expression.
func ParseExpr(tokens []script.Token) (Expr, error) {
	p := &parser{line: tokens}
	return p.expression(tokens)
}

type parser struct {
	line     []script.Token
	warnings []string
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: script.Join(p.line)}
}

func (p *parser) warn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// expression parses a complete token run by precedence climbing. The whole
// run must be consumed.
func (p *parser) expression(tokens []script.Token) (Expr, error) {
	if len(tokens) == 0 {
		return nil, p.fail("expected to find an expression but it is empty")
	}
	s := &stream{tokens: tokens}
	e, err := p.minus(s)
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, p.fail("invalid format, could not reduce to an expression near %q", s.peek().String())
	}
	return e, nil
}

// minus is left associative: a - b - c is (a - b) - c.
func (p *parser) minus(s *stream) (Expr, error) {
	left, err := p.chain(s, orOperator)
	if err != nil {
		return nil, err
	}
	for s.peekOperator(minusOperator) {
		s.next()
		if s.done() {
			return nil, p.fail("%s operator (%q) must not be the first or last token", operatorNames[minusOperator], rune(minusOperator))
		}
		right, err := p.chain(s, orOperator)
		if err != nil {
			return nil, err
		}
		left = &Minus{Left: left, Right: right}
	}
	return left, nil
}

// chain parses a run of operands joined by op into one N-ary node. Each
// operand is parsed at the next tighter level.
func (p *parser) chain(s *stream, op script.Operator) (Expr, error) {
	tighter := func() (Expr, error) {
		switch op {
		case orOperator:
			return p.chain(s, oddOperator)
		case oddOperator:
			return p.chain(s, andOperator)
		default:
			return p.atom(s)
		}
	}

	first, err := tighter()
	if err != nil {
		return nil, err
	}
	if !s.peekOperator(op) {
		return first, nil
	}

	args := []Expr{first}
	for s.peekOperator(op) {
		s.next()
		if s.done() {
			return nil, p.fail("%s operator (%q) must not be the first or last token", operatorNames[op], rune(op))
		}
		if _, isOp := s.peek().(script.Operator); isOp {
			return nil, p.fail("%s operator (%q) must precede an expression", operatorNames[op], rune(op))
		}
		next, err := tighter()
		if err != nil {
			return nil, err
		}
		args = append(args, next)
	}

	switch op {
	case andOperator:
		return &Combine{Op: OpAnd, K: len(args), Args: args}, nil
	case oddOperator:
		return &Combine{Op: OpOddParity, Args: args}, nil
	default:
		return &Combine{Op: OpOr, K: 1, Args: args}, nil
	}
}

// atom parses a word reference, a call or a parenthesized sub-expression.
func (p *parser) atom(s *stream) (Expr, error) {
	if s.done() {
		return nil, p.fail("expected to find an expression but it is empty")
	}
	switch tok := s.next().(type) {
	case script.Word:
		if g, ok := s.peek().(script.Group); ok {
			s.next()
			cmd, err := p.call(string(tok), g, false)
			if err != nil {
				return nil, err
			}
			return cmd.(Expr), nil
		}
		return &WordRef{Word: string(tok)}, nil
	case script.Group:
		return p.expression(tok)
	case script.Operator:
		if name, known := operatorNames[tok]; known {
			return nil, p.fail("%s operator (%q) must follow an expression", name, rune(tok))
		}
		return nil, p.fail("unexpected operator %q", rune(tok))
	default:
		return nil, p.fail("unexpected token %v", tok)
	}
}

// call resolves name(args) to a built-in node or a function call. A
// whole-line call to a non-built-in becomes a FunctionCall command.
func (p *parser) call(name string, group script.Group, statement bool) (Command, error) {
	args, err := p.arguments(group)
	if err != nil {
		return nil, err
	}
	if isBuiltin(name) {
		return p.builtin(name, args)
	}
	if statement {
		return &FunctionCall{Name: name, Args: args}, nil
	}
	return &Call{Name: name, Args: args}, nil
}

// arguments splits a group at top-level commas and parses each part.
func (p *parser) arguments(group script.Group) ([]Expr, error) {
	parts := script.SplitCommas(group)
	args := make([]Expr, 0, len(parts))
	for _, part := range parts {
		e, err := p.expression(part)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return args, nil
}

// stream is a cursor over one level of tokens.
type stream struct {
	tokens []script.Token
	pos    int
}

func (s *stream) done() bool { return s.pos >= len(s.tokens) }

func (s *stream) peek() script.Token {
	if s.done() {
		return nil
	}
	return s.tokens[s.pos]
}

func (s *stream) next() script.Token {
	t := s.peek()
	s.pos++
	return t
}

func (s *stream) peekOperator(op script.Operator) bool {
	return isOperator(s.peek(), op)
}

func isOperator(t script.Token, op script.Operator) bool {
	o, ok := t.(script.Operator)
	return ok && o == op
}

func isGroup(t script.Token) bool {
	_, ok := t.(script.Group)
	return ok
}
