package serde

import (
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/hist"
	capnp "zombiezen.com/go/capnproto2"
)

// protoHist reads and writes the ProtoHist struct of hist.capnp.
type protoHist struct{ capnp.Struct }

var protoHistSize = capnp.ObjectSize{DataSize: 24, PointerCount: 2}

func newRootProtoHist(seg *capnp.Segment) (protoHist, error) {
	st, err := capnp.NewRootStruct(seg, protoHistSize)
	return protoHist{st}, err
}

func readRootProtoHist(msg *capnp.Message) (protoHist, error) {
	root, err := msg.RootPtr()
	return protoHist{root.Struct()}, err
}

func (s protoHist) Capacity() uint64 { return s.Struct.Uint64(0) }
func (s protoHist) SetCapacity(v uint64) { s.Struct.SetUint64(0, v) }
func (s protoHist) Min() float64 { return math.Float64frombits(s.Struct.Uint64(8)) }
func (s protoHist) SetMin(v float64) { s.Struct.SetUint64(8, math.Float64bits(v)) }
func (s protoHist) Max() float64 { return math.Float64frombits(s.Struct.Uint64(16)) }
func (s protoHist) SetMax(v float64) { s.Struct.SetUint64(16, math.Float64bits(v)) }

func (s protoHist) Means() (capnp.Float64List, error) {
	p, err := s.Struct.Ptr(0)
	return capnp.Float64List{List: p.List()}, err
}

func (s protoHist) NewMeans(n int32) (capnp.Float64List, error) {
	list, err := capnp.NewFloat64List(s.Struct.Segment(), n)
	if err != nil {
		return capnp.Float64List{}, err
	}
	return list, s.Struct.SetPtr(0, list.List.ToPtr())
}

func (s protoHist) Counts() (capnp.UInt64List, error) {
	p, err := s.Struct.Ptr(1)
	return capnp.UInt64List{List: p.List()}, err
}

func (s protoHist) NewCounts(n int32) (capnp.UInt64List, error) {
	list, err := capnp.NewUInt64List(s.Struct.Segment(), n)
	if err != nil {
		return capnp.UInt64List{}, err
	}
	return list, s.Struct.SetPtr(1, list.List.ToPtr())
}

// HistToBytes encodes h as a single segment Cap'n Proto message, the
// format of store records.
func HistToBytes(h *hist.StreamHist) ([]byte, error) {
	record := NewRecord(h)
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, err
	}

	histProto, err := newRootProtoHist(seg)
	if err != nil {
		return nil, err
	}
	histProto.SetCapacity(uint64(record.Capacity))
	histProto.SetMin(record.Min)
	histProto.SetMax(record.Max)

	meansProto, err := histProto.NewMeans(int32(len(record.Means)))
	if err != nil {
		return nil, err
	}
	countsProto, err := histProto.NewCounts(int32(len(record.Counts)))
	if err != nil {
		return nil, err
	}
	for i := range record.Means {
		meansProto.Set(i, record.Means[i])
		countsProto.Set(i, record.Counts[i])
	}

	return msg.Marshal()
}

func BytesToHist(buf []byte) (*hist.StreamHist, error) {
	msg, err := capnp.Unmarshal(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding histogram record")
	}
	histProto, err := readRootProtoHist(msg)
	if err != nil {
		return nil, errors.Wrap(err, "decoding histogram record")
	}

	meansProto, err := histProto.Means()
	if err != nil {
		return nil, err
	}
	countsProto, err := histProto.Counts()
	if err != nil {
		return nil, err
	}
	record := &Record{
		Capacity: int(histProto.Capacity()),
		Means:    make([]float64, meansProto.Len()),
		Counts:   make([]uint64, countsProto.Len()),
		Min:      histProto.Min(),
		Max:      histProto.Max(),
	}
	for i := 0; i < meansProto.Len(); i++ {
		record.Means[i] = meansProto.At(i)
	}
	for i := 0; i < countsProto.Len(); i++ {
		record.Counts[i] = countsProto.At(i)
	}
	return record.Hist()
}
