// Package serde converts histograms to and from their file and store
// encodings: JSON, MessagePack and Cap'n Proto.
package serde

import (
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/hist"
)

// Record is the flat, encoding-neutral form of a histogram. Min and Max
// are NaN when unknown. A zero Capacity means one slot per bin.
type Record struct {
	Capacity int
	Means    []float64
	Counts   []uint64
	Min      float64
	Max      float64
}

func NewRecord(h *hist.StreamHist) *Record {
	snapshot := h.Snapshot()
	record := &Record{
		Capacity: snapshot.Capacity,
		Means:    make([]float64, len(snapshot.Bins)),
		Counts:   make([]uint64, len(snapshot.Bins)),
		Min:      snapshot.Min,
		Max:      snapshot.Max,
	}
	for i, bin := range snapshot.Bins {
		record.Means[i] = bin.Mean
		record.Counts[i] = bin.Count
	}
	return record
}

func (record *Record) Snapshot() (hist.Snapshot, error) {
	if len(record.Means) != len(record.Counts) {
		return hist.Snapshot{}, errors.Newf("record has %d means but %d counts",
			len(record.Means), len(record.Counts))
	}
	capacity := record.Capacity
	if capacity == 0 {
		capacity = int(math.Max(float64(len(record.Means)), 1))
	}
	snapshot := hist.Snapshot{
		Capacity: capacity,
		Bins:     make([]hist.Bin, len(record.Means)),
		Min:      record.Min,
		Max:      record.Max,
	}
	for i := range record.Means {
		snapshot.Bins[i] = hist.Bin{Mean: record.Means[i], Count: record.Counts[i]}
	}
	return snapshot, nil
}

func (record *Record) Hist() (*hist.StreamHist, error) {
	snapshot, err := record.Snapshot()
	if err != nil {
		return nil, err
	}
	h, err := hist.FromSnapshot(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "invalid histogram record")
	}
	return h, nil
}
