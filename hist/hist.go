// Package hist implements the streaming histogram of Ben-Haim & Tom-Tov,
// "A Streaming Parallel Decision Tree Algorithm" (JMLR 11, 2010).
//
// A StreamHist keeps at most Capacity bins. Every insert adds a bin and,
// once the capacity is exceeded, merges the two bins with the closest
// means. A StreamHist is not safe for concurrent mutation.
package hist

import (
	"github.com/cockroachdb/errors"
	"math"
)

type StreamHist struct {
	bins     *BinSet
	capacity int
	// Exact extremes of the observed values, NaN while empty.
	min float64
	max float64
}

// New returns an empty histogram holding at most capacity bins.
func New(capacity int) (*StreamHist, error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	return &StreamHist{
		bins:     NewBinSet(capacity),
		capacity: capacity,
		min:      math.NaN(),
		max:      math.NaN(),
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Insert adds a single observation. x must be finite.
func (h *StreamHist) Insert(x float64) error {
	if !isFinite(x) {
		return errors.Wrapf(ErrInvalidInput, "value %v", x)
	}
	if h.IsEmpty() {
		h.min, h.max = x, x
	} else {
		h.min = math.Min(h.min, x)
		h.max = math.Max(h.max, x)
	}
	h.bins.InsertPoint(x)
	if h.bins.Len() > h.capacity {
		// The set grew by exactly one bin, one merge restores the bound.
		return h.bins.MergeClosest()
	}
	return nil
}

// Resize changes the capacity. Shrinking merges the closest bins until the
// new capacity is met, growing only raises the ceiling for future inserts.
func (h *StreamHist) Resize(capacity int) error {
	if capacity < 1 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	h.capacity = capacity
	return h.bins.trim(capacity)
}

// Merge returns a new histogram holding the data of both h and other. The
// result takes the larger of both capacities. Neither input is modified.
func (h *StreamHist) Merge(other *StreamHist) *StreamHist {
	capacity := h.capacity
	if other.capacity > capacity {
		capacity = other.capacity
	}
	merged := &StreamHist{
		bins:     NewBinSet(h.bins.Len() + other.bins.Len()),
		capacity: capacity,
		min:      mergeExtreme(h.min, other.min, math.Min),
		max:      mergeExtreme(h.max, other.max, math.Max),
	}
	// Both sides are sorted, a linear merge keeps the union sorted.
	i, j := 0, 0
	for i < h.bins.Len() || j < other.bins.Len() {
		if j == other.bins.Len() || (i < h.bins.Len() && h.bins.At(i).Mean <= other.bins.At(j).Mean) {
			merged.bins.appendSorted(h.bins.At(i))
			i++
		} else {
			merged.bins.appendSorted(other.bins.At(j))
			j++
		}
	}
	// trim only fails below two bins, which capacity >= 1 rules out.
	_ = merged.bins.trim(capacity)
	return merged
}

// mergeExtreme picks between two extremes, either of which may be NaN for
// an empty side.
func mergeExtreme(a, b float64, pick func(float64, float64) float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return pick(a, b)
}

func (h *StreamHist) Capacity() int {
	return h.capacity
}

// Len is the current number of bins.
func (h *StreamHist) Len() int {
	return h.bins.Len()
}

// Count is the number of observations absorbed so far.
func (h *StreamHist) Count() uint64 {
	return h.bins.TotalCount()
}

func (h *StreamHist) IsEmpty() bool {
	return h.bins.Len() == 0
}

func (h *StreamHist) Min() (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	return h.min, nil
}

func (h *StreamHist) Max() (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	return h.max, nil
}

// Bins returns a copy of the bins ordered by mean.
func (h *StreamHist) Bins() []Bin {
	return h.bins.Bins()
}

// Each calls fn for every bin in ascending order of mean until fn returns
// false.
func (h *StreamHist) Each(fn func(Bin) bool) {
	for i := 0; i < h.bins.Len(); i++ {
		if !fn(h.bins.At(i)) {
			return
		}
	}
}

func (h *StreamHist) Clone() *StreamHist {
	return &StreamHist{
		bins:     h.bins.clone(h.capacity),
		capacity: h.capacity,
		min:      h.min,
		max:      h.max,
	}
}

// Equal reports whether both histograms have the same capacity, bins and
// extremes.
func (h *StreamHist) Equal(other *StreamHist) bool {
	if h.capacity != other.capacity || h.bins.Len() != other.bins.Len() {
		return false
	}
	for i := 0; i < h.bins.Len(); i++ {
		if h.bins.At(i) != other.bins.At(i) {
			return false
		}
	}
	return sameExtreme(h.min, other.min) && sameExtreme(h.max, other.max)
}

func sameExtreme(a, b float64) bool {
	return (math.IsNaN(a) && math.IsNaN(b)) || a == b
}
