// Package sortedset implements sets of strictly ascending, unique int32
// values and the merge-based set algebra used to combine page lists.
//
// A Set is the growable form. Seal turns it into a Sealed value, which is
// immutable and is what the operators consume and produce. All operators
// are linear merges over already sorted input and treat the zero Sealed as
// the empty set.
//
// Counting operators (AtLeast, Exactly, OddParity) walk every operand in
// lockstep and emit a value depending on how many operands contain it:
//
//	AtLeast(2, {1,2,5}, {2,3}, {1,2,3,4,5}) = {1,2,3,5}
//	Exactly(k, ops) = AtLeast(k, ops) - AtLeast(k+1, ops)
package sortedset
