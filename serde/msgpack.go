package serde

import (
	"github.com/cockroachdb/errors"
	"github.com/tinylib/msgp/msgp"
	"io"
	"math"
	"streamhist/hist"
)

// The MessagePack form is a map with the keys capacity, means, counts,
// min and max. Unknown extremes are encoded as nil.

var (
	_ msgp.Encodable   = (*Record)(nil)
	_ msgp.Decodable   = (*Record)(nil)
	_ msgp.Marshaler   = (*Record)(nil)
	_ msgp.Unmarshaler = (*Record)(nil)
)

func (record *Record) EncodeMsg(en *msgp.Writer) error {
	if err := en.WriteMapHeader(5); err != nil {
		return err
	}
	if err := en.WriteString("capacity"); err != nil {
		return err
	}
	if err := en.WriteInt(record.Capacity); err != nil {
		return err
	}
	if err := en.WriteString("means"); err != nil {
		return err
	}
	if err := en.WriteArrayHeader(uint32(len(record.Means))); err != nil {
		return err
	}
	for _, mean := range record.Means {
		if err := en.WriteFloat64(mean); err != nil {
			return err
		}
	}
	if err := en.WriteString("counts"); err != nil {
		return err
	}
	if err := en.WriteArrayHeader(uint32(len(record.Counts))); err != nil {
		return err
	}
	for _, count := range record.Counts {
		if err := en.WriteUint64(count); err != nil {
			return err
		}
	}
	if err := en.WriteString("min"); err != nil {
		return err
	}
	if err := writeExtreme(en, record.Min); err != nil {
		return err
	}
	if err := en.WriteString("max"); err != nil {
		return err
	}
	return writeExtreme(en, record.Max)
}

func writeExtreme(en *msgp.Writer, value float64) error {
	if math.IsNaN(value) {
		return en.WriteNil()
	}
	return en.WriteFloat64(value)
}

func (record *Record) DecodeMsg(dc *msgp.Reader) error {
	*record = Record{Min: math.NaN(), Max: math.NaN()}
	size, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}
	for ; size > 0; size-- {
		key, err := dc.ReadMapKeyPtr()
		if err != nil {
			return err
		}
		switch msgp.UnsafeString(key) {
		case "capacity":
			record.Capacity, err = dc.ReadInt()
		case "means":
			var n uint32
			n, err = dc.ReadArrayHeader()
			record.Means = make([]float64, n)
			for i := range record.Means {
				if err != nil {
					break
				}
				record.Means[i], err = dc.ReadFloat64()
			}
		case "counts":
			var n uint32
			n, err = dc.ReadArrayHeader()
			record.Counts = make([]uint64, n)
			for i := range record.Counts {
				if err != nil {
					break
				}
				record.Counts[i], err = dc.ReadUint64()
			}
		case "min":
			record.Min, err = readExtreme(dc)
		case "max":
			record.Max, err = readExtreme(dc)
		default:
			err = dc.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decoding field %q", string(key))
		}
	}
	return nil
}

func readExtreme(dc *msgp.Reader) (float64, error) {
	if dc.IsNil() {
		return math.NaN(), dc.ReadNil()
	}
	return dc.ReadFloat64()
}

func (record *Record) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, record.Msgsize())
	o = msgp.AppendMapHeader(o, 5)
	o = msgp.AppendString(o, "capacity")
	o = msgp.AppendInt(o, record.Capacity)
	o = msgp.AppendString(o, "means")
	o = msgp.AppendArrayHeader(o, uint32(len(record.Means)))
	for _, mean := range record.Means {
		o = msgp.AppendFloat64(o, mean)
	}
	o = msgp.AppendString(o, "counts")
	o = msgp.AppendArrayHeader(o, uint32(len(record.Counts)))
	for _, count := range record.Counts {
		o = msgp.AppendUint64(o, count)
	}
	o = msgp.AppendString(o, "min")
	o = appendExtreme(o, record.Min)
	o = msgp.AppendString(o, "max")
	o = appendExtreme(o, record.Max)
	return o, nil
}

func appendExtreme(o []byte, value float64) []byte {
	if math.IsNaN(value) {
		return msgp.AppendNil(o)
	}
	return msgp.AppendFloat64(o, value)
}

func (record *Record) UnmarshalMsg(b []byte) ([]byte, error) {
	*record = Record{Min: math.NaN(), Max: math.NaN()}
	size, o, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for ; size > 0; size-- {
		var key []byte
		key, o, err = msgp.ReadMapKeyZC(o)
		if err != nil {
			return b, err
		}
		switch msgp.UnsafeString(key) {
		case "capacity":
			record.Capacity, o, err = msgp.ReadIntBytes(o)
		case "means":
			var n uint32
			n, o, err = msgp.ReadArrayHeaderBytes(o)
			record.Means = make([]float64, n)
			for i := range record.Means {
				if err != nil {
					break
				}
				record.Means[i], o, err = msgp.ReadFloat64Bytes(o)
			}
		case "counts":
			var n uint32
			n, o, err = msgp.ReadArrayHeaderBytes(o)
			record.Counts = make([]uint64, n)
			for i := range record.Counts {
				if err != nil {
					break
				}
				record.Counts[i], o, err = msgp.ReadUint64Bytes(o)
			}
		case "min":
			record.Min, o, err = unmarshalExtreme(o)
		case "max":
			record.Max, o, err = unmarshalExtreme(o)
		default:
			o, err = msgp.Skip(o)
		}
		if err != nil {
			return b, errors.Wrapf(err, "decoding field %q", string(key))
		}
	}
	return o, nil
}

func unmarshalExtreme(b []byte) (float64, []byte, error) {
	if msgp.IsNil(b) {
		o, err := msgp.ReadNilBytes(b)
		return math.NaN(), o, err
	}
	return msgp.ReadFloat64Bytes(b)
}

func (record *Record) Msgsize() int {
	return msgp.MapHeaderSize +
		msgp.StringPrefixSize + len("capacity") + msgp.IntSize +
		msgp.StringPrefixSize + len("means") + msgp.ArrayHeaderSize + len(record.Means)*msgp.Float64Size +
		msgp.StringPrefixSize + len("counts") + msgp.ArrayHeaderSize + len(record.Counts)*msgp.Uint64Size +
		msgp.StringPrefixSize + len("min") + msgp.Float64Size +
		msgp.StringPrefixSize + len("max") + msgp.Float64Size
}

func WriteMsgpack(w io.Writer, h *hist.StreamHist) error {
	return msgp.Encode(w, NewRecord(h))
}

func ReadMsgpack(r io.Reader) (*hist.StreamHist, error) {
	record := &Record{}
	if err := msgp.Decode(r, record); err != nil {
		return nil, errors.Wrap(err, "reading MessagePack histogram")
	}
	return record.Hist()
}
