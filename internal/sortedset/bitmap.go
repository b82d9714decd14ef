package sortedset

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap converts the set to a roaring bitmap. Negative values have no
// bitmap representation and are skipped.
func (s Sealed) Bitmap() *roaring.Bitmap {
	rb := roaring.New()
	vals := make([]uint32, 0, len(s.data))
	for _, v := range s.data {
		if v >= 0 {
			vals = append(vals, uint32(v))
		}
	}
	rb.AddMany(vals)
	return rb
}

// FromBitmap converts a roaring bitmap back into a sealed set. Values above
// math.MaxInt32 are dropped.
func FromBitmap(rb *roaring.Bitmap) Sealed {
	if rb == nil || rb.IsEmpty() {
		return Sealed{}
	}
	vals := rb.ToArray()
	data := make([]int32, 0, len(vals))
	for _, v := range vals {
		if v > math.MaxInt32 {
			break
		}
		data = append(data, int32(v))
	}
	return Sealed{data: data}
}

// UnionMany ORs a wide fan-in of sets, such as every posting list under a
// prefix, through roaring's multi-way union.
func UnionMany(sets []Sealed) Sealed {
	switch len(sets) {
	case 0:
		return Sealed{}
	case 1:
		return sets[0]
	}
	bitmaps := make([]*roaring.Bitmap, 0, len(sets))
	for _, s := range sets {
		if !s.IsEmpty() {
			bitmaps = append(bitmaps, s.Bitmap())
		}
	}
	if len(bitmaps) == 0 {
		return Sealed{}
	}
	return FromBitmap(roaring.FastOr(bitmaps...))
}
