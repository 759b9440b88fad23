package hist

import (
	"github.com/cockroachdb/errors"
	"sort"
)

// BinSet keeps bins ordered by strictly increasing mean. The bins live in
// a contiguous slice, insertion and merging splice in place.
type BinSet struct {
	bins  []Bin
	total uint64
}

func NewBinSet(capacity int) *BinSet {
	return &BinSet{
		bins:  make([]Bin, 0, capacity+1),
		total: 0,
	}
}

// partitionPoint returns the index of the first bin whose mean is not
// smaller than x.
func (bs *BinSet) partitionPoint(x float64) int {
	return sort.Search(len(bs.bins), func(i int) bool {
		return bs.bins[i].Mean >= x
	})
}

// InsertPoint adds a single observation. An existing bin with the same
// mean absorbs it, otherwise a new bin (x, 1) is spliced in.
func (bs *BinSet) InsertPoint(x float64) {
	bs.insertBin(Bin{Mean: x, Count: 1})
}

func (bs *BinSet) insertBin(bin Bin) {
	idx := bs.partitionPoint(bin.Mean)
	bs.total += bin.Count
	if idx < len(bs.bins) && bs.bins[idx].Mean == bin.Mean {
		bs.bins[idx].Count += bin.Count
		return
	}
	bs.bins = append(bs.bins, Bin{})
	copy(bs.bins[idx+1:], bs.bins[idx:])
	bs.bins[idx] = bin
}

// appendSorted appends a bin known to be >= the last bin, combining equal
// means.
func (bs *BinSet) appendSorted(bin Bin) {
	bs.total += bin.Count
	if n := len(bs.bins); n > 0 && bs.bins[n-1].Mean == bin.Mean {
		bs.bins[n-1].Count += bin.Count
		return
	}
	bs.bins = append(bs.bins, bin)
}

// closestPair returns i such that bins i and i+1 have the smallest gap.
// Ties go to the leftmost pair.
func (bs *BinSet) closestPair() int {
	minIdx := 0
	minGap := bs.bins[1].Mean - bs.bins[0].Mean
	for i := 1; i < len(bs.bins)-1; i++ {
		if gap := bs.bins[i+1].Mean - bs.bins[i].Mean; gap < minGap {
			minGap = gap
			minIdx = i
		}
	}
	return minIdx
}

// MergeClosest replaces the two closest adjacent bins with their weighted
// average.
func (bs *BinSet) MergeClosest() error {
	if len(bs.bins) < 2 {
		return errors.AssertionFailedf("merging closest bins needs at least 2 bins, have %d", len(bs.bins))
	}
	idx := bs.closestPair()
	bs.bins[idx] = bs.bins[idx].Merge(bs.bins[idx+1])
	bs.bins = append(bs.bins[:idx+1], bs.bins[idx+2:]...)
	return nil
}

func (bs *BinSet) trim(capacity int) error {
	for len(bs.bins) > capacity {
		if err := bs.MergeClosest(); err != nil {
			return err
		}
	}
	return nil
}

func (bs *BinSet) Len() int {
	return len(bs.bins)
}

func (bs *BinSet) TotalCount() uint64 {
	return bs.total
}

func (bs *BinSet) At(i int) Bin {
	return bs.bins[i]
}

// Bins returns a copy of the bins in ascending order of mean.
func (bs *BinSet) Bins() []Bin {
	bins := make([]Bin, len(bs.bins))
	copy(bins, bs.bins)
	return bins
}

func (bs *BinSet) clone(capacity int) *BinSet {
	size := capacity + 1
	if size < len(bs.bins) {
		size = len(bs.bins)
	}
	bins := make([]Bin, len(bs.bins), size)
	copy(bins, bs.bins)
	return &BinSet{bins: bins, total: bs.total}
}
