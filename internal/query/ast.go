package query

import (
	"strconv"
	"strings"

	"github.com/Aman-CERP/wordex/internal/script"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// Command is an executable statement: an assignment, a function call or an
// expression whose value is displayed.
type Command interface {
	command()

	// String renders the command as script text that parses back to an
	// equivalent command.
	String() string
}

// Expr is an expression node. Nodes are immutable once parsed.
type Expr interface {
	Command
	eval(e *Evaluator) (sortedset.Sealed, error)
}

// CombineOp selects how a Combine node merges its operands.
type CombineOp int

const (
	OpAnd CombineOp = iota
	OpOr
	OpOddParity
	OpAtLeast
)

func (op CombineOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpOddParity:
		return "oddParity"
	case OpAtLeast:
		return "atLeast"
	default:
		return "unknown"
	}
}

// WordRef names an indexed word or a variable.
type WordRef struct {
	Word string
}

// Constant is a fixed page set, written as integer(...) or empty().
type Constant struct {
	Value sortedset.Sealed
}

// Range is the progression Start, Start+Step, ... up to End.
type Range struct {
	Start, End, Step int32
}

// Combine merges two or more operands. K is the threshold for OpAtLeast.
type Combine struct {
	Op   CombineOp
	K    int
	Args []Expr
}

// Minus removes the pages of Right from Left.
type Minus struct {
	Left, Right Expr
}

// Exactly keeps the pages found in exactly K operands.
type Exactly struct {
	K    int
	Args []Expr
}

// Call is a value-returning function provided by the Context.
type Call struct {
	Name string
	Args []Expr
}

// Assign binds the value of an expression to a variable name.
type Assign struct {
	Name  string
	Value Expr
}

// FunctionCall is a whole-line call to a Context function. It is evaluated
// and displayed when the function returns a value, and run otherwise.
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*WordRef) command()      {}
func (*Constant) command()     {}
func (*Range) command()        {}
func (*Combine) command()      {}
func (*Minus) command()        {}
func (*Exactly) command()      {}
func (*Call) command()         {}
func (*Assign) command()       {}
func (*FunctionCall) command() {}

func (w *WordRef) String() string { return script.DefaultFormat.LiteralIfNeeded(w.Word) }

func (c *Constant) String() string {
	if c.Value.IsEmpty() {
		return "empty()"
	}
	var b strings.Builder
	b.WriteString("integer(")
	for i, v := range c.Value.Values() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	b.WriteByte(')')
	return b.String()
}

func (r *Range) String() string {
	s := "range(" + intLiteral(r.Start) + "," + intLiteral(r.End)
	if r.Step != 1 {
		s += "," + intLiteral(r.Step)
	}
	return s + ")"
}

// intLiteral quotes negative numbers, which would otherwise tokenize as a
// minus operator followed by a word.
func intLiteral(v int32) string {
	return script.DefaultFormat.LiteralIfNeeded(strconv.Itoa(int(v)))
}

func (c *Combine) String() string {
	switch {
	case c.Op == OpAtLeast:
		return "atLeast" + strconv.Itoa(c.K) + "( " + joinArgs(c.Args, ", ") + " )"
	case c.Op == OpOddParity && len(c.Args) > 2:
		return "oddParity( " + joinArgs(c.Args, ", ") + " )"
	}
	sep := map[CombineOp]string{OpAnd: " & ", OpOr: " | ", OpOddParity: " ^ "}[c.Op]
	return "( " + joinArgs(c.Args, sep) + " )"
}

func (m *Minus) String() string {
	return "( " + m.Left.String() + " - " + m.Right.String() + " )"
}

func (x *Exactly) String() string {
	return "exactly" + strconv.Itoa(x.K) + "( " + joinArgs(x.Args, ", ") + " )"
}

func (c *Call) String() string { return callString(c.Name, c.Args) }

func (f *FunctionCall) String() string { return callString(f.Name, f.Args) }

func (a *Assign) String() string {
	return script.DefaultFormat.LiteralIfNeeded(a.Name) + " = " + a.Value.String()
}

func callString(name string, args []Expr) string {
	name = script.DefaultFormat.LiteralIfNeeded(name)
	if len(args) == 0 {
		return name + "()"
	}
	return name + "( " + joinArgs(args, ", ") + " )"
}

func joinArgs(args []Expr, sep string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, sep)
}
