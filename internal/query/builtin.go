package query

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Aman-CERP/wordex/internal/sortedset"
)

const (
	andName       = "and"
	orName        = "or"
	oddParityName = "oddParity"
	xorName       = "xor"
	atLeastPrefix = "atLeast"
	exactlyPrefix = "exactly"
	integerName   = "integer"
	emptyName     = "empty"
	rangeName     = "range"
)

// numbered returns the digit suffix of names like atLeast3, or -1.
func numbered(name, prefix string, lowest byte) int {
	if len(name) != len(prefix)+1 || !strings.HasPrefix(name, prefix) {
		return -1
	}
	c := name[len(prefix)]
	if c < lowest || c > '9' {
		return -1
	}
	return int(c - '0')
}

// isBuiltin reports whether name is handled by the parser rather than the
// Context. atLeast1 is not a built-in: it would only be another name for or.
func isBuiltin(name string) bool {
	switch name {
	case andName, orName, oddParityName, xorName, integerName, emptyName, rangeName:
		return true
	}
	return numbered(name, atLeastPrefix, '2') > 0 || numbered(name, exactlyPrefix, '1') > 0
}

func (p *parser) builtin(name string, args []Expr) (Expr, error) {
	switch name {
	case andName, orName, oddParityName:
		if len(args) < 2 {
			return nil, p.fail("%s() must have at least two arguments", name)
		}
		op := map[string]CombineOp{andName: OpAnd, orName: OpOr, oddParityName: OpOddParity}[name]
		return &Combine{Op: op, K: combineK(op, len(args)), Args: args}, nil

	case xorName:
		if len(args) != 2 {
			return nil, p.fail("%s() must have exactly two arguments to avoid ambiguity, use %s() or %s1()", xorName, oddParityName, exactlyPrefix)
		}
		return &Combine{Op: OpOddParity, Args: args}, nil

	case integerName:
		values, err := p.integerLiterals(args)
		if err != nil {
			return nil, err
		}
		set, err := constantSet(values)
		if err != nil {
			return nil, err
		}
		return &Constant{Value: set}, nil

	case emptyName:
		if len(args) != 0 {
			return nil, p.fail("%s() must take zero arguments", emptyName)
		}
		return &Constant{}, nil

	case rangeName:
		return p.rangeExpr(args)
	}

	if k := numbered(name, atLeastPrefix, '2'); k > 0 {
		switch {
		case k > len(args):
			p.warn("%s will always return empty() results because of the number of arguments", name)
			return &Constant{}, nil
		case k == len(args):
			p.warn("%s is the same as calling and() because of the number of arguments", name)
			return &Combine{Op: OpAnd, K: k, Args: args}, nil
		}
		return &Combine{Op: OpAtLeast, K: k, Args: args}, nil
	}

	if k := numbered(name, exactlyPrefix, '1'); k > 0 {
		switch {
		case k == len(args):
			p.warn("%s is the same as calling and() because of the number of arguments", name)
			return &Combine{Op: OpAnd, K: k, Args: args}, nil
		case k > len(args):
			p.warn("%s will always return the empty set with just %d arguments", name, len(args))
			return &Constant{}, nil
		}
		return &Exactly{K: k, Args: args}, nil
	}

	return nil, p.fail("%s is not a built-in operator", name)
}

func combineK(op CombineOp, n int) int {
	switch op {
	case OpAnd:
		return n
	case OpOr:
		return 1
	}
	return 0
}

// integerLiterals requires every argument to be a bare word holding a
// 32-bit integer.
func (p *parser) integerLiterals(args []Expr) ([]int32, error) {
	values := make([]int32, len(args))
	for i, a := range args {
		w, ok := a.(*WordRef)
		if !ok {
			return nil, p.fail("not a valid integer literal: %s", a.String())
		}
		v, err := strconv.ParseInt(w.Word, 10, 32)
		if err != nil {
			return nil, p.fail("not a valid integer literal: %s", w.Word)
		}
		values[i] = int32(v)
	}
	return values, nil
}

// constantSet keeps the positive values, sorted and without duplicates.
func constantSet(values []int32) (sortedset.Sealed, error) {
	set, err := sortedset.FromUnsorted(slices.DeleteFunc(slices.Clone(values), func(v int32) bool { return v < 1 }))
	if err != nil {
		return sortedset.Sealed{}, err
	}
	return set.Seal(), nil
}

func (p *parser) rangeExpr(args []Expr) (Expr, error) {
	values, err := p.integerLiterals(args)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 || len(values) > 3 {
		return nil, p.fail("%s() must have 2-3 arguments", rangeName)
	}
	r := &Range{Start: values[0], End: values[1], Step: 1}
	if len(values) == 3 {
		r.Step = values[2]
	}
	if r.End < r.Start {
		return nil, p.fail("the end of the range must be greater than or equal to the start of the range: %s", r.String())
	}
	if r.Step < 1 {
		return nil, p.fail("step cannot be less than 1: %s", r.String())
	}
	return r, nil
}
