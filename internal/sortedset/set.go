package sortedset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxCapacity is the hard ceiling on the number of values a set may hold.
const MaxCapacity = 1_000_000_000

const (
	// pushGrowth is added to twice the current capacity when Push runs out of room.
	pushGrowth = 10

	// mergeGrowth is the larger step used by the operators while building results.
	mergeGrowth = 400

	// describeLimit is how many values String shows before eliding the middle.
	describeLimit = 20
)

var (
	// ErrOrdering is returned when a value is not strictly greater than the current maximum,
	// or when a source array holds duplicates.
	ErrOrdering = errors.New("values must be added in strictly ascending order")

	// ErrCapacity is returned when a set would grow past MaxCapacity.
	ErrCapacity = errors.New("sorted set capacity exceeded")

	// ErrSealed is returned when a set is mutated after Seal.
	ErrSealed = errors.New("sorted set is sealed")
)

// Set is a growable set of strictly ascending, unique int32 values.
//
// The zero value is an empty set ready for use. A Set is not safe for
// concurrent mutation.
type Set struct {
	data []int32

	// aliased marks a backing slice that may be shared with a Sealed value
	// or a caller; it is copied before the next mutation.
	aliased bool
	sealed  bool
}

// New returns an empty set with room for capacity values.
func New(capacity int) (*Set, error) {
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: requested %d", ErrCapacity, capacity)
	}
	return &Set{data: make([]int32, 0, max(capacity, 0))}, nil
}

// FromUnsorted builds a set from values in any order. The input is copied,
// sorted and deduplicated. A nil slice yields an empty set.
func FromUnsorted(values []int32) (*Set, error) {
	if len(values) > MaxCapacity {
		return nil, fmt.Errorf("%w: %d values", ErrCapacity, len(values))
	}
	data := slices.Clone(values)
	slices.Sort(data)
	return &Set{data: slices.Compact(data)}, nil
}

// FromSorted builds a set from values that are already strictly ascending.
// The input is copied.
func FromSorted(values []int32) (*Set, error) {
	if len(values) > MaxCapacity {
		return nil, fmt.Errorf("%w: %d values", ErrCapacity, len(values))
	}
	if err := validate(values); err != nil {
		return nil, err
	}
	return &Set{data: slices.Clone(values)}, nil
}

func validate(values []int32) error {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return fmt.Errorf("%w: cannot add %d after %d", ErrOrdering, values[i], values[i-1])
		}
	}
	return nil
}

// Len returns the number of values in the set.
func (s *Set) Len() int { return len(s.data) }

// IsEmpty reports whether the set holds no values.
func (s *Set) IsEmpty() bool { return len(s.data) == 0 }

// Last returns the largest value. It panics on an empty set.
func (s *Set) Last() int32 { return s.data[len(s.data)-1] }

// Push appends v. It fails with ErrOrdering unless v is strictly greater
// than the current maximum.
func (s *Set) Push(v int32) error {
	if s.sealed {
		return ErrSealed
	}
	if n := len(s.data); n > 0 && v <= s.data[n-1] {
		return fmt.Errorf("%w: cannot add %d after %d", ErrOrdering, v, s.data[n-1])
	}
	if s.aliased {
		s.unshare()
	}
	if len(s.data) == cap(s.data) {
		if err := s.grow(pushGrowth); err != nil {
			return err
		}
	}
	s.data = append(s.data, v)
	return nil
}

// pushUnchecked appends v without the ordering check. Callers building
// merge results guarantee ascending input.
func (s *Set) pushUnchecked(v int32) {
	if len(s.data) == cap(s.data) {
		if err := s.grow(mergeGrowth); err != nil {
			panic(err)
		}
	}
	s.data = append(s.data, v)
}

func (s *Set) grow(step int) error {
	c := cap(s.data)
	if c >= MaxCapacity {
		return fmt.Errorf("%w: limit is %d", ErrCapacity, MaxCapacity)
	}
	next := min(2*c+step, MaxCapacity)
	data := make([]int32, len(s.data), next)
	copy(data, s.data)
	s.data = data
	s.aliased = false
	return nil
}

func (s *Set) unshare() {
	s.data = slices.Clip(slices.Clone(s.data))
	s.aliased = false
}

// Trim releases unused capacity.
func (s *Set) Trim() {
	if cap(s.data) == len(s.data) && !s.aliased {
		return
	}
	s.unshare()
}

// Seal trims the set and returns its contents as an immutable Sealed value.
// The Set is consumed: any later Push fails with ErrSealed.
func (s *Set) Seal() Sealed {
	if s.sealed {
		return Sealed{}
	}
	data := s.data
	if cap(data) != len(data) {
		data = slices.Clip(slices.Clone(data))
	}
	s.data = nil
	s.sealed = true
	return Sealed{data: data}
}

// seal hands the backing slice over without trimming. Used for merge
// results whose builder is discarded immediately.
func (s *Set) seal() Sealed {
	data := s.data
	s.data = nil
	s.sealed = true
	return Sealed{data: data}
}

// Values returns a copy of the set's contents.
func (s *Set) Values() []int32 { return slices.Clone(s.data) }

// Equal reports whether both sets hold the same values.
func (s *Set) Equal(other *Set) bool { return slices.Equal(s.data, other.data) }

// String renders the set with the middle elided when it is long.
func (s *Set) String() string { return describe(s.data, describeLimit) }

// Sealed is an immutable sorted set, produced by Set.Seal or by the set
// operators. The zero value is the empty set.
type Sealed struct {
	data []int32
}

// Empty returns the empty sealed set.
func Empty() Sealed { return Sealed{} }

// Of returns a sealed set from values that must already be strictly ascending.
func Of(values ...int32) (Sealed, error) {
	s, err := FromSorted(values)
	if err != nil {
		return Sealed{}, err
	}
	return s.seal(), nil
}

// Wrap adopts values as a sealed set without validating or copying them.
// The caller guarantees strict ascending order and must not modify the
// slice afterwards.
func Wrap(values []int32) Sealed { return Sealed{data: values} }

// Len returns the number of values.
func (s Sealed) Len() int { return len(s.data) }

// IsEmpty reports whether the set holds no values.
func (s Sealed) IsEmpty() bool { return len(s.data) == 0 }

// At returns the i-th smallest value.
func (s Sealed) At(i int) int32 { return s.data[i] }

// Last returns the largest value. It panics on an empty set.
func (s Sealed) Last() int32 { return s.data[len(s.data)-1] }

// Values returns a copy of the contents.
func (s Sealed) Values() []int32 { return slices.Clone(s.data) }

// Contains reports whether v is in the set.
func (s Sealed) Contains(v int32) bool {
	_, ok := slices.BinarySearch(s.data, v)
	return ok
}

// All iterates the values in ascending order.
func (s Sealed) All() func(yield func(int32) bool) {
	return func(yield func(int32) bool) {
		for _, v := range s.data {
			if !yield(v) {
				return
			}
		}
	}
}

// Unseal returns a growable copy of the set.
func (s Sealed) Unseal() *Set {
	return &Set{data: s.data, aliased: true}
}

// Equal reports whether both sets hold the same values.
func (s Sealed) Equal(other Sealed) bool { return slices.Equal(s.data, other.data) }

// Compare orders sets lexicographically by their values; a proper prefix
// sorts first.
func (s Sealed) Compare(other Sealed) int { return slices.Compare(s.data, other.data) }

// String renders the set with the middle elided when it is long.
func (s Sealed) String() string { return describe(s.data, describeLimit) }

// Describe renders at most limit values, eliding the middle of longer sets.
func (s Sealed) Describe(limit int) string { return describe(s.data, limit) }

func describe(data []int32, limit int) string {
	if len(data) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(strconv.Itoa(int(data[0])))
	if limit > 1 && len(data) > limit {
		half := limit / 2
		for _, v := range data[1:half] {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(int(v)))
		}
		b.WriteString(" . . . ")
		b.WriteString(strconv.Itoa(int(data[len(data)-half])))
		for _, v := range data[len(data)-half+1:] {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(int(v)))
		}
	} else {
		for _, v := range data[1:] {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(int(v)))
		}
	}
	b.WriteByte('}')
	return b.String()
}
