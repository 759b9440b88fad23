package hist

import (
	"github.com/cockroachdb/errors"
	"sort"
)

// Snapshot is the flat state of a histogram: its capacity, the ordered
// (mean, count) pairs and the observed extremes (NaN when unknown).
type Snapshot struct {
	Capacity int
	Bins     []Bin
	Min      float64
	Max      float64
}

func (h *StreamHist) Snapshot() Snapshot {
	return Snapshot{
		Capacity: h.capacity,
		Bins:     h.bins.Bins(),
		Min:      h.min,
		Max:      h.max,
	}
}

// FromSnapshot rebuilds a histogram without merging any bins. Bins are
// sorted and equal means are combined. Unknown extremes default to the
// outermost bin means.
func FromSnapshot(snapshot Snapshot) (*StreamHist, error) {
	h, err := New(snapshot.Capacity)
	if err != nil {
		return nil, err
	}
	bins := make([]Bin, len(snapshot.Bins))
	copy(bins, snapshot.Bins)
	for _, bin := range bins {
		if !isFinite(bin.Mean) {
			return nil, errors.Wrapf(ErrInvalidInput, "bin mean %v", bin.Mean)
		}
		if bin.Count < 1 {
			return nil, errors.Wrapf(ErrInvalidInput, "bin %v has no observations", bin)
		}
	}
	sort.SliceStable(bins, func(i, j int) bool {
		return bins[i].Mean < bins[j].Mean
	})
	for _, bin := range bins {
		h.bins.appendSorted(bin)
	}
	if h.bins.Len() > h.capacity {
		return nil, errors.Wrapf(ErrInvalidCapacity,
			"capacity %d holds %d bins", h.capacity, h.bins.Len())
	}
	if h.IsEmpty() {
		return h, nil
	}

	first, last := h.bins.At(0).Mean, h.bins.At(h.bins.Len()-1).Mean
	h.min, h.max = first, last
	if isFinite(snapshot.Min) && snapshot.Min <= first {
		h.min = snapshot.Min
	}
	if isFinite(snapshot.Max) && snapshot.Max >= last {
		h.max = snapshot.Max
	}
	return h, nil
}

// FromValues builds a histogram with one bin per distinct value and a
// capacity equal to the number of values.
func FromValues(values ...float64) (*StreamHist, error) {
	capacity := len(values)
	if capacity == 0 {
		capacity = 1
	}
	h, err := New(capacity)
	if err != nil {
		return nil, err
	}
	for _, value := range values {
		if err := h.Insert(value); err != nil {
			return nil, err
		}
	}
	return h, nil
}
