package core

import (
	"github.com/cockroachdb/errors"
	"streamhist/hist"
	"streamhist/stats"
	"sync"
)

// Stream is a named histogram with exact running statistics next to it.
// All methods are safe for concurrent use; writers are serialized.
type Stream struct {
	name       string
	hist       *hist.StreamHist
	statistics *stats.StreamStatistics
	store      *BackingStore
	metrics    *Metrics
	dirty      bool
	mu         sync.Mutex
}

func newStream(
	name string,
	h *hist.StreamHist,
	statistics *stats.StreamStatistics,
	store *BackingStore,
	metrics *Metrics) *Stream {
	stream := &Stream{
		name:       name,
		hist:       h,
		statistics: statistics,
		store:      store,
		metrics:    metrics,
		dirty:      false,
	}
	metrics.bins.WithLabelValues(name).Set(float64(h.Len()))
	return stream
}

func (stream *Stream) Name() string {
	return stream.name
}

func (stream *Stream) Capacity() int {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.hist.Capacity()
}

func (stream *Stream) append(value float64) error {
	stream.statistics.Append(value)
	if err := stream.hist.Insert(value); err != nil {
		stream.metrics.valuesRejected.WithLabelValues(stream.name).Inc()
		return err
	}
	stream.metrics.valuesAppended.WithLabelValues(stream.name).Inc()
	stream.dirty = true
	return nil
}

func (stream *Stream) Append(value float64) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	err := stream.append(value)
	stream.metrics.bins.WithLabelValues(stream.name).Set(float64(stream.hist.Len()))
	return err
}

// AppendBatch inserts every finite value and reports how many were
// rejected.
func (stream *Stream) AppendBatch(values []float64) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	rejected := 0
	for _, value := range values {
		if err := stream.append(value); err != nil {
			rejected++
		}
	}
	stream.metrics.bins.WithLabelValues(stream.name).Set(float64(stream.hist.Len()))
	if rejected > 0 {
		return errors.Wrapf(hist.ErrInvalidInput, "stream %q rejected %d of %d values",
			stream.name, rejected, len(values))
	}
	return nil
}

func (stream *Stream) Resize(capacity int) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if err := stream.hist.Resize(capacity); err != nil {
		return err
	}
	stream.dirty = true
	stream.metrics.bins.WithLabelValues(stream.name).Set(float64(stream.hist.Len()))
	return nil
}

func (stream *Stream) Snapshot() hist.Snapshot {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.hist.Snapshot()
}

// Hist returns a copy of the current histogram.
func (stream *Stream) Hist() *hist.StreamHist {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.hist.Clone()
}

func (stream *Stream) Statistics() *stats.StreamStatistics {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.statistics.Clone()
}

// Query runs the named op against the current histogram. See OpNames.
func (stream *Stream) Query(opName string, params *QueryParams) (float64, error) {
	op, err := GetOpFromName(opName)
	if err != nil {
		return 0, err
	}
	stream.mu.Lock()
	defer stream.mu.Unlock()
	result, err := op.Query(stream.hist, params)
	if err != nil {
		return 0, errors.Wrapf(err, "stream %q: %s", stream.name, GetOpNameFromOpType(op.GetOpType()))
	}
	return result, nil
}

// Flush persists the stream if it changed since the last flush.
func (stream *Stream) Flush() error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.flush()
}

func (stream *Stream) flush() error {
	if !stream.dirty {
		return nil
	}
	if err := stream.store.Put(stream.name, stream.hist, stream.statistics); err != nil {
		return errors.Wrapf(err, "flushing stream %q", stream.name)
	}
	stream.dirty = false
	stream.metrics.flushes.Inc()
	return nil
}
