package tree

import "container/heap"

// HeapItem is an entry of MinHeap. Source identifies where the key came
// from and breaks ties between equal keys.
type HeapItem struct {
	Key    float64
	Source int
	Index  int
}

type MinHeap []*HeapItem

func (mh MinHeap) Len() int {
	return len(mh)
}

func (mh MinHeap) Less(i, j int) bool {
	if mh[i].Key == mh[j].Key {
		return mh[i].Source < mh[j].Source
	} else {
		return mh[i].Key < mh[j].Key
	}
}

func (mh MinHeap) Swap(i, j int) {
	mh[i], mh[j] = mh[j], mh[i]
	mh[i].Index = i
	mh[j].Index = j
}

func (mh *MinHeap) Push(x interface{}) {
	n := len(*mh)
	item := x.(*HeapItem)
	item.Index = n
	*mh = append(*mh, item)
}

func (mh *MinHeap) Pop() interface{} {
	old := *mh
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.Index = -1
	*mh = old[0 : n-1]
	return item
}

func (mh *MinHeap) Top() *HeapItem {
	return (*mh)[0]
}

// Update changes the key of an item already in the heap and restores the
// heap order.
func (mh *MinHeap) Update(item *HeapItem, key float64) {
	item.Key = key
	heap.Fix(mh, item.Index)
}

func NewMinHeap(initSize int) *MinHeap {
	mh := make(MinHeap, 0, initSize)
	heap.Init(&mh)
	return &mh
}
