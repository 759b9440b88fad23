package serde

import (
	"encoding/json"
	"github.com/cockroachdb/errors"
	"io"
	"math"
	"streamhist/hist"
)

type jsonRecord struct {
	Means    []float64 `json:"means"`
	Counts   []uint64  `json:"counts"`
	Min      *float64  `json:"min"`
	Max      *float64  `json:"max"`
	Capacity int       `json:"capacity,omitempty"`
}

func (record *Record) MarshalJSON() ([]byte, error) {
	out := jsonRecord{
		Means:    record.Means,
		Counts:   record.Counts,
		Capacity: record.Capacity,
	}
	if out.Means == nil {
		out.Means = []float64{}
	}
	if out.Counts == nil {
		out.Counts = []uint64{}
	}
	if !math.IsNaN(record.Min) {
		out.Min = &record.Min
	}
	if !math.IsNaN(record.Max) {
		out.Max = &record.Max
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a missing or null min and max, and a missing
// capacity.
func (record *Record) UnmarshalJSON(data []byte) error {
	var in jsonRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*record = Record{
		Capacity: in.Capacity,
		Means:    in.Means,
		Counts:   in.Counts,
		Min:      math.NaN(),
		Max:      math.NaN(),
	}
	if in.Min != nil {
		record.Min = *in.Min
	}
	if in.Max != nil {
		record.Max = *in.Max
	}
	return nil
}

func WriteJSON(w io.Writer, h *hist.StreamHist) error {
	return json.NewEncoder(w).Encode(NewRecord(h))
}

func ReadJSON(r io.Reader) (*hist.StreamHist, error) {
	record := &Record{}
	if err := json.NewDecoder(r).Decode(record); err != nil {
		return nil, errors.Wrap(err, "reading JSON histogram")
	}
	return record.Hist()
}
