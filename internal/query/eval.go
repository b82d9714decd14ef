package query

import (
	"errors"
	"fmt"

	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// EvalError wraps a failure raised while evaluating a node.
type EvalError struct {
	Node string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%v (while evaluating %s)", e.Err, e.Node)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Evaluator executes commands against a Context. Each node is evaluated at
// most once per Evaluator, so a word referenced twice is looked up once.
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	ctx  Context
	memo map[Expr]sortedset.Sealed
}

// NewEvaluator creates an evaluator bound to ctx.
func NewEvaluator(ctx Context) *Evaluator {
	return &Evaluator{ctx: ctx, memo: make(map[Expr]sortedset.Sealed)}
}

// Eval returns the value of x.
func (e *Evaluator) Eval(x Expr) (sortedset.Sealed, error) {
	if v, ok := e.memo[x]; ok {
		return v, nil
	}
	v, err := x.eval(e)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	e.memo[x] = v
	return v, nil
}

// Execute runs one command. Expressions are evaluated and handed to the
// Context for display.
func (e *Evaluator) Execute(cmd Command) error {
	switch c := cmd.(type) {
	case *Assign:
		v, err := e.Eval(c.Value)
		if err != nil {
			return err
		}
		return e.ctx.SetVariable(c.Name, v)
	case *FunctionCall:
		if e.ctx.FunctionReturnsValue(c.Name) {
			v, err := e.Eval(&Call{Name: c.Name, Args: c.Args})
			if err != nil {
				return err
			}
			e.ctx.DisplayResult(v)
			return nil
		}
		return e.ctx.RunFunction(e.invocation(c.Name, c.Args))
	case Expr:
		v, err := e.Eval(c)
		if err != nil {
			return err
		}
		e.ctx.DisplayResult(v)
		return nil
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

func (e *Evaluator) invocation(name string, args []Expr) Invocation {
	return Invocation{Name: name, Args: args, ev: e}
}

func (e *Evaluator) evalAll(args []Expr) ([]sortedset.Sealed, error) {
	out := make([]sortedset.Sealed, len(args))
	for i, a := range args {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (w *WordRef) eval(e *Evaluator) (sortedset.Sealed, error) {
	v, err := e.ctx.PagesFor(w.Word)
	if err != nil {
		return sortedset.Sealed{}, &EvalError{Node: w.String(), Err: err}
	}
	return v, nil
}

func (c *Constant) eval(*Evaluator) (sortedset.Sealed, error) {
	return c.Value, nil
}

func (r *Range) eval(*Evaluator) (sortedset.Sealed, error) {
	start, end, step := int64(r.Start), int64(r.End), int64(r.Step)
	if end < start || step < 1 {
		return sortedset.Sealed{}, &EvalError{Node: r.String(), Err: errors.New("invalid range")}
	}
	if start < 1 {
		// Skip forward to the first positive term of the progression.
		start += ((1 - start + step - 1) / step) * step
	}
	if start > end {
		return sortedset.Empty(), nil
	}
	n := (end-start)/step + 1
	if n > sortedset.MaxCapacity {
		return sortedset.Sealed{}, &EvalError{Node: r.String(), Err: sortedset.ErrCapacity}
	}
	values := make([]int32, 0, n)
	for v := start; v <= end; v += step {
		values = append(values, int32(v))
	}
	return sortedset.Wrap(values), nil
}

func (c *Combine) eval(e *Evaluator) (sortedset.Sealed, error) {
	sets, err := e.evalAll(c.Args)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	switch c.Op {
	case OpAnd:
		return sortedset.AndAll(sets...), nil
	case OpOr:
		return sortedset.OrAll(sets...), nil
	case OpOddParity:
		return sortedset.OddParity(sets...), nil
	case OpAtLeast:
		return sortedset.AtLeast(c.K, sets...), nil
	default:
		return sortedset.Sealed{}, &EvalError{Node: c.String(), Err: fmt.Errorf("unknown combine op %d", c.Op)}
	}
}

func (m *Minus) eval(e *Evaluator) (sortedset.Sealed, error) {
	left, err := e.Eval(m.Left)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	right, err := e.Eval(m.Right)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	return sortedset.Minus(left, right), nil
}

func (x *Exactly) eval(e *Evaluator) (sortedset.Sealed, error) {
	sets, err := e.evalAll(x.Args)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	return sortedset.Exactly(x.K, sets...), nil
}

func (c *Call) eval(e *Evaluator) (sortedset.Sealed, error) {
	v, err := e.ctx.CallFunction(e.invocation(c.Name, c.Args))
	if err != nil {
		return sortedset.Sealed{}, &EvalError{Node: c.String(), Err: err}
	}
	return v, nil
}
