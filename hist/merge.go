package hist

import (
	"container/heap"
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/tree"
)

// MergeAll combines any number of histograms in one pass. The bins of all
// inputs are k-way merged through a min-heap, then merged down to the
// largest input capacity. For two inputs this is a.Merge(b); for more it
// trims once at the end instead of after every pairwise merge.
func MergeAll(hists ...*StreamHist) (*StreamHist, error) {
	if len(hists) == 0 {
		return nil, errors.New("no histograms to merge")
	}

	capacity := 0
	numBins := 0
	min, max := math.NaN(), math.NaN()
	for _, h := range hists {
		if h.capacity > capacity {
			capacity = h.capacity
		}
		numBins += h.bins.Len()
		min = mergeExtreme(min, h.min, math.Min)
		max = mergeExtreme(max, h.max, math.Max)
	}

	merged := &StreamHist{
		bins:     NewBinSet(numBins),
		capacity: capacity,
		min:      min,
		max:      max,
	}

	// One cursor per input; the heap item's Source is the input index.
	cursors := make([]int, len(hists))
	minHeap := tree.NewMinHeap(len(hists))
	for source, h := range hists {
		if h.bins.Len() > 0 {
			heap.Push(minHeap, &tree.HeapItem{Key: h.bins.At(0).Mean, Source: source})
		}
	}
	for minHeap.Len() > 0 {
		item := minHeap.Top()
		h := hists[item.Source]
		merged.bins.appendSorted(h.bins.At(cursors[item.Source]))
		cursors[item.Source]++
		if cursors[item.Source] < h.bins.Len() {
			minHeap.Update(item, h.bins.At(cursors[item.Source]).Mean)
		} else {
			heap.Pop(minHeap)
		}
	}

	if err := merged.bins.trim(capacity); err != nil {
		return nil, err
	}
	return merged, nil
}
