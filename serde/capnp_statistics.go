package serde

import (
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/stats"
	capnp "zombiezen.com/go/capnproto2"
)

// protoStatistics reads and writes the ProtoStatistics struct of
// hist.capnp.
type protoStatistics struct{ capnp.Struct }

var protoStatisticsSize = capnp.ObjectSize{DataSize: 56, PointerCount: 0}

func (s protoStatistics) NumValues() uint64 { return s.Struct.Uint64(0) }
func (s protoStatistics) SetNumValues(v uint64) { s.Struct.SetUint64(0, v) }
func (s protoStatistics) NumRejected() uint64 { return s.Struct.Uint64(8) }
func (s protoStatistics) SetNumRejected(v uint64) { s.Struct.SetUint64(8, v) }
func (s protoStatistics) Min() float64 { return s.float64At(16) }
func (s protoStatistics) SetMin(v float64) { s.setFloat64At(16, v) }
func (s protoStatistics) Max() float64 { return s.float64At(24) }
func (s protoStatistics) SetMax(v float64) { s.setFloat64At(24, v) }
func (s protoStatistics) WelfordCount() uint64 { return s.Struct.Uint64(32) }
func (s protoStatistics) SetWelfordCount(v uint64) { s.Struct.SetUint64(32, v) }
func (s protoStatistics) WelfordMean() float64 { return s.float64At(40) }
func (s protoStatistics) SetWelfordMean(v float64) { s.setFloat64At(40, v) }
func (s protoStatistics) WelfordM2() float64 { return s.float64At(48) }
func (s protoStatistics) SetWelfordM2(v float64) { s.setFloat64At(48, v) }

func (s protoStatistics) float64At(off capnp.DataOffset) float64 {
	return math.Float64frombits(s.Struct.Uint64(off))
}

func (s protoStatistics) setFloat64At(off capnp.DataOffset, v float64) {
	s.Struct.SetUint64(off, math.Float64bits(v))
}

func StatisticsToBytes(statistics *stats.StreamStatistics) ([]byte, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, err
	}
	st, err := capnp.NewRootStruct(seg, protoStatisticsSize)
	if err != nil {
		return nil, err
	}
	statisticsProto := protoStatistics{st}
	statisticsProto.SetNumValues(statistics.NumValues)
	statisticsProto.SetNumRejected(statistics.NumRejected)
	statisticsProto.SetMin(statistics.Min)
	statisticsProto.SetMax(statistics.Max)
	statisticsProto.SetWelfordCount(statistics.ValueStats.GetCount())
	statisticsProto.SetWelfordMean(statistics.ValueStats.GetMean())
	statisticsProto.SetWelfordM2(statistics.ValueStats.GetM2())
	return msg.Marshal()
}

func BytesToStatistics(buf []byte) (*stats.StreamStatistics, error) {
	msg, err := capnp.Unmarshal(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding statistics record")
	}
	root, err := msg.RootPtr()
	if err != nil {
		return nil, errors.Wrap(err, "decoding statistics record")
	}
	statisticsProto := protoStatistics{root.Struct()}
	return &stats.StreamStatistics{
		NumValues:   statisticsProto.NumValues(),
		NumRejected: statisticsProto.NumRejected(),
		Min:         statisticsProto.Min(),
		Max:         statisticsProto.Max(),
		ValueStats: stats.RestoreWelford(
			statisticsProto.WelfordCount(),
			statisticsProto.WelfordMean(),
			statisticsProto.WelfordM2()),
	}, nil
}
