package query

import (
	"errors"

	"github.com/Aman-CERP/wordex/internal/sortedset"
)

var (
	// ErrUnresolved is returned by a Context when a name is neither an
	// indexed word nor a variable.
	ErrUnresolved = errors.New("word is not in the index and it is not a variable")

	// ErrDuplicateName is returned by a Context that refuses to overwrite a
	// variable.
	ErrDuplicateName = errors.New("variable already exists")

	// ErrUnknownFunction is returned by a Context for a function it does not
	// provide.
	ErrUnknownFunction = errors.New("function not recognized")
)

// Context resolves words and variables and hosts the functions a script
// may call. Statements are executed one at a time against a Context.
type Context interface {
	// PagesFor resolves a word or variable name to its page set.
	PagesFor(word string) (sortedset.Sealed, error)

	// CallFunction evaluates a value-returning function.
	CallFunction(inv Invocation) (sortedset.Sealed, error)

	// RunFunction executes a function for its side effects.
	RunFunction(inv Invocation) error

	// FunctionReturnsValue reports whether a whole-line call to name should
	// be evaluated and displayed rather than run.
	FunctionReturnsValue(name string) bool

	// SetVariable binds name to value.
	SetVariable(name string, value sortedset.Sealed) error

	// DisplayResult presents the value of an expression statement.
	DisplayResult(value sortedset.Sealed)
}

// Invocation is a call handed to a Context. Arguments are unevaluated so
// the Context may inspect their script form or evaluate them on demand.
type Invocation struct {
	Name string
	Args []Expr

	ev *Evaluator
}

// Evaluate evaluates argument i.
func (inv Invocation) Evaluate(i int) (sortedset.Sealed, error) {
	return inv.ev.Eval(inv.Args[i])
}

// EvaluateAll evaluates every argument in order.
func (inv Invocation) EvaluateAll() ([]sortedset.Sealed, error) {
	out := make([]sortedset.Sealed, len(inv.Args))
	for i := range inv.Args {
		v, err := inv.Evaluate(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WordArgs returns the arguments that are bare word references, in order.
func (inv Invocation) WordArgs() []string {
	var words []string
	for _, a := range inv.Args {
		if w, ok := a.(*WordRef); ok {
			words = append(words, w.Word)
		}
	}
	return words
}
