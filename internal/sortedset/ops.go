package sortedset

import (
	"math"
	"slices"
)

func builder(capacity int) *Set {
	return &Set{data: make([]int32, 0, min(capacity, MaxCapacity))}
}

// Or returns the union of a and b.
func Or(a, b Sealed) Sealed {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	}
	out := builder(a.Len() + b.Len())
	x, y := a.data, b.data
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			out.pushUnchecked(x[i])
			i++
		case x[i] > y[j]:
			out.pushUnchecked(y[j])
			j++
		default:
			out.pushUnchecked(x[i])
			i++
			j++
		}
	}
	for ; i < len(x); i++ {
		out.pushUnchecked(x[i])
	}
	for ; j < len(y); j++ {
		out.pushUnchecked(y[j])
	}
	return out.seal()
}

// And returns the intersection of a and b.
func And(a, b Sealed) Sealed {
	if a.IsEmpty() || b.IsEmpty() {
		return Sealed{}
	}
	out := builder(min(a.Len(), b.Len()))
	x, y := a.data, b.data
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			i++
		case x[i] > y[j]:
			j++
		default:
			out.pushUnchecked(x[i])
			i++
			j++
		}
	}
	return out.seal()
}

// Minus returns the values of a that are not in b.
func Minus(a, b Sealed) Sealed {
	if a.IsEmpty() || b.IsEmpty() {
		return a
	}
	out := builder(a.Len())
	x, y := a.data, b.data
	i, j := 0, 0
	for i < len(x) {
		if j == len(y) {
			out.data = append(out.data, x[i:]...)
			break
		}
		switch {
		case x[i] < y[j]:
			out.pushUnchecked(x[i])
			i++
		case x[i] > y[j]:
			j++
		default:
			i++
			j++
		}
	}
	return out.seal()
}

// Xor returns the values present in exactly one of a and b.
func Xor(a, b Sealed) Sealed {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	}
	out := builder(a.Len() + b.Len())
	x, y := a.data, b.data
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			out.pushUnchecked(x[i])
			i++
		case x[i] > y[j]:
			out.pushUnchecked(y[j])
			j++
		default:
			i++
			j++
		}
	}
	for ; i < len(x); i++ {
		out.pushUnchecked(x[i])
	}
	for ; j < len(y); j++ {
		out.pushUnchecked(y[j])
	}
	return out.seal()
}

// OrAll returns the union of all sets.
func OrAll(sets ...Sealed) Sealed {
	return fold(sets, Or)
}

// AndAll returns the intersection of all sets. An empty operand makes the
// result empty.
func AndAll(sets ...Sealed) Sealed {
	if slices.ContainsFunc(sets, Sealed.IsEmpty) {
		return Sealed{}
	}
	return fold(sets, And)
}

// fold combines the two smallest remaining operands each round so that
// intermediate results stay small when operand sizes are skewed.
func fold(sets []Sealed, op func(a, b Sealed) Sealed) Sealed {
	work := make([]Sealed, 0, len(sets))
	for _, s := range sets {
		if !s.IsEmpty() {
			work = append(work, s)
		}
	}
	switch len(work) {
	case 0:
		return Sealed{}
	case 1:
		return work[0]
	}
	for len(work) > 1 {
		slices.SortFunc(work, func(a, b Sealed) int { return b.Len() - a.Len() })
		n := len(work)
		work[n-2] = op(work[n-2], work[n-1])
		work = work[:n-1]
	}
	return work[0]
}

// AtLeast returns the values present in at least k of the sets.
func AtLeast(k int, sets ...Sealed) Sealed {
	switch {
	case len(sets) == 0 || k > len(sets):
		return Sealed{}
	case k <= 1:
		return OrAll(sets...)
	case k == len(sets):
		return AndAll(sets...)
	}
	return counting(sets, func(count int) bool { return count >= k }, k)
}

// Exactly returns the values present in exactly k of the sets.
func Exactly(k int, sets ...Sealed) Sealed {
	return Minus(AtLeast(k, sets...), AtLeast(k+1, sets...))
}

// OddParity returns the values present in an odd number of the sets.
func OddParity(sets ...Sealed) Sealed {
	switch len(sets) {
	case 0:
		return Sealed{}
	case 1:
		return sets[0]
	case 2:
		return Xor(sets[0], sets[1])
	}
	return counting(sets, func(count int) bool { return count%2 == 1 }, 0)
}

type cursor struct {
	data []int32
	pos  int
}

// counting walks all operands in lockstep. Each step takes the smallest head
// value, counts how many operands share it, advances those operands and emits
// the value when keep accepts the count. The walk stops once fewer than
// minActive operands remain. Exhausted operands are swapped out of the
// active list, so the order operands are visited in is not stable.
func counting(sets []Sealed, keep func(count int) bool, minActive int) Sealed {
	active := make([]cursor, 0, len(sets))
	total := 0
	for _, s := range sets {
		if !s.IsEmpty() {
			active = append(active, cursor{data: s.data})
			total += s.Len()
		}
	}
	out := builder(min(total, 200))
	for len(active) > 0 && len(active) >= minActive {
		smallest := int32(math.MaxInt32)
		count := 0
		for _, c := range active {
			switch v := c.data[c.pos]; {
			case v < smallest:
				smallest = v
				count = 1
			case v == smallest:
				count++
			}
		}
		for i := 0; i < len(active); {
			c := &active[i]
			if c.data[c.pos] == smallest {
				c.pos++
				if c.pos == len(c.data) {
					last := len(active) - 1
					active[i] = active[last]
					active = active[:last]
					continue
				}
			}
			i++
		}
		if keep(count) {
			out.pushUnchecked(smallest)
		}
	}
	return out.seal()
}
