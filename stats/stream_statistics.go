package stats

import "math"

// StreamStatistics keeps exact summaries of every value appended to a
// stream, next to the approximations the histogram answers.
type StreamStatistics struct {
	NumValues   uint64
	NumRejected uint64
	Min         float64
	Max         float64
	ValueStats  *Welford
}

func NewStreamStatistics() *StreamStatistics {
	return &StreamStatistics{
		NumValues:   0,
		NumRejected: 0,
		Min:         math.NaN(),
		Max:         math.NaN(),
		ValueStats:  NewWelford(),
	}
}

func (stream *StreamStatistics) Append(value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		stream.NumRejected++
		return
	}
	if stream.NumValues == 0 {
		stream.Min = value
		stream.Max = value
	} else {
		stream.Min = math.Min(stream.Min, value)
		stream.Max = math.Max(stream.Max, value)
	}
	stream.ValueStats.Update(value)
	stream.NumValues++
}

func (stream *StreamStatistics) Merge(other *StreamStatistics) {
	if other.NumValues > 0 {
		if stream.NumValues == 0 {
			stream.Min = other.Min
			stream.Max = other.Max
		} else {
			stream.Min = math.Min(stream.Min, other.Min)
			stream.Max = math.Max(stream.Max, other.Max)
		}
	}
	stream.NumValues += other.NumValues
	stream.NumRejected += other.NumRejected
	stream.ValueStats.Merge(other.ValueStats)
}

func (stream *StreamStatistics) Clone() *StreamStatistics {
	clone := *stream
	clone.ValueStats = stream.ValueStats.Clone()
	return &clone
}
