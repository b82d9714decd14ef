package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// fakeContext resolves a fixed word table and records what it is asked.
type fakeContext struct {
	words     map[string][]int32
	vars      map[string]sortedset.Sealed
	lookups   map[string]int
	displayed []sortedset.Sealed
	ran       []string
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		words: map[string][]int32{
			"cat": {1, 2, 5},
			"dog": {2, 3},
			"eel": {3, 4, 5},
		},
		vars:    map[string]sortedset.Sealed{},
		lookups: map[string]int{},
	}
}

func (f *fakeContext) PagesFor(word string) (sortedset.Sealed, error) {
	f.lookups[word]++
	if v, ok := f.vars[word]; ok {
		return v, nil
	}
	if pages, ok := f.words[word]; ok {
		return sortedset.Wrap(pages), nil
	}
	return sortedset.Sealed{}, ErrUnresolved
}

func (f *fakeContext) CallFunction(inv Invocation) (sortedset.Sealed, error) {
	switch inv.Name {
	case "twice":
		// Evaluates its argument twice to exercise memoization.
		if _, err := inv.Evaluate(0); err != nil {
			return sortedset.Sealed{}, err
		}
		return inv.Evaluate(0)
	case "first":
		return sortedset.Wrap([]int32{1}), nil
	}
	return sortedset.Sealed{}, ErrUnknownFunction
}

func (f *fakeContext) RunFunction(inv Invocation) error {
	if inv.Name != "note" {
		return ErrUnknownFunction
	}
	f.ran = append(f.ran, inv.Name)
	return nil
}

func (f *fakeContext) FunctionReturnsValue(name string) bool {
	return name == "twice" || name == "first"
}

func (f *fakeContext) SetVariable(name string, value sortedset.Sealed) error {
	f.vars[name] = value
	return nil
}

func (f *fakeContext) DisplayResult(value sortedset.Sealed) {
	f.displayed = append(f.displayed, value)
}

func run(t *testing.T, ctx *fakeContext, line string) error {
	t.Helper()
	st, err := ParseLine(line)
	require.NoError(t, err, line)
	return NewEvaluator(ctx).Execute(st.Command)
}

func TestExecute_Expressions(t *testing.T) {
	tests := []struct {
		line string
		want []int32
	}{
		{line: "cat & dog", want: []int32{2}},
		{line: "cat | dog", want: []int32{1, 2, 3, 5}},
		{line: "cat - dog", want: []int32{1, 5}},
		{line: "cat ^ dog", want: []int32{1, 3, 5}},
		{line: "cat ^ dog ^ eel", want: []int32{1, 4}},
		{line: "atLeast2(cat, dog, range(1, 5))", want: []int32{1, 2, 3, 5}},
		{line: "exactly1(cat, dog, eel)", want: []int32{1, 4}},
		{line: "cat - dog | eel", want: []int32{1}},
		{line: "integer(9, 4) | cat", want: []int32{1, 2, 4, 5, 9}},
		{line: `range("-5", 6, 3)`, want: []int32{1, 4}},
		{line: "range(2, 11, 4)", want: []int32{2, 6, 10}},
		{line: "range(7, 7)", want: []int32{7}},
		{line: "empty() | dog", want: []int32{2, 3}},
		{line: "first() & cat", want: []int32{1}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ctx := newFakeContext()

			require.NoError(t, run(t, ctx, tt.line))

			require.Len(t, ctx.displayed, 1)
			assert.Equal(t, tt.want, ctx.displayed[0].Values())
		})
	}
}

func TestExecute_AssignmentThenReference(t *testing.T) {
	// Given: a variable bound to an expression
	ctx := newFakeContext()
	require.NoError(t, run(t, ctx, "pets = cat | dog"))
	assert.Empty(t, ctx.displayed)

	// When: a later statement references it
	require.NoError(t, run(t, ctx, "pets - eel"))

	// Then: the variable's pages are used
	require.Len(t, ctx.displayed, 1)
	assert.Equal(t, []int32{1, 2}, ctx.displayed[0].Values())
}

func TestExecute_FunctionCalls(t *testing.T) {
	t.Run("value returning call is displayed", func(t *testing.T) {
		ctx := newFakeContext()
		require.NoError(t, run(t, ctx, "twice(cat)"))
		require.Len(t, ctx.displayed, 1)
		assert.Equal(t, []int32{1, 2, 5}, ctx.displayed[0].Values())
	})

	t.Run("side effect call is run", func(t *testing.T) {
		ctx := newFakeContext()
		require.NoError(t, run(t, ctx, "note(cat)"))
		assert.Equal(t, []string{"note"}, ctx.ran)
		assert.Empty(t, ctx.displayed)
	})

	t.Run("unknown function", func(t *testing.T) {
		ctx := newFakeContext()
		err := run(t, ctx, "nope(cat) & dog")
		assert.ErrorIs(t, err, ErrUnknownFunction)
	})
}

func TestExecute_UnresolvedWord(t *testing.T) {
	ctx := newFakeContext()

	err := run(t, ctx, "cat & ferret")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolved))
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "ferret", ee.Node)
	assert.Empty(t, ctx.displayed)
}

func TestEvaluator_MemoizesNodes(t *testing.T) {
	// Given: a function that evaluates the same argument twice
	ctx := newFakeContext()

	// When: it runs
	require.NoError(t, run(t, ctx, "twice(cat & dog)"))

	// Then: each word was looked up once
	assert.Equal(t, 1, ctx.lookups["cat"])
	assert.Equal(t, 1, ctx.lookups["dog"])
}

func TestInvocation_WordArgs(t *testing.T) {
	st, err := ParseLine("f(cat, dog & eel, \"two words\")")
	require.NoError(t, err)
	fc := st.Command.(*FunctionCall)

	inv := NewEvaluator(newFakeContext()).invocation(fc.Name, fc.Args)

	assert.Equal(t, []string{"cat", "two words"}, inv.WordArgs())
}
