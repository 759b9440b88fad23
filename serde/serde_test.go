package serde

import (
	"bytes"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
	"math"
	"path/filepath"
	"streamhist/hist"
	"streamhist/stats"
	"strings"
	"testing"
)

func sampleHist(t *testing.T) *hist.StreamHist {
	h, err := hist.New(4)
	require.NoError(t, err)
	for _, x := range []float64{2, 5, 1, 3, 4, 1, 2.5, -7.25, 12} {
		require.NoError(t, h.Insert(x))
	}
	return h
}

func emptyHist(t *testing.T) *hist.StreamHist {
	h, err := hist.New(10)
	require.NoError(t, err)
	return h
}

func TestRecord_RoundTrip(t *testing.T) {
	h := sampleHist(t)
	back, err := NewRecord(h).Hist()
	require.NoError(t, err)
	assert.True(t, back.Equal(h))
}

func TestRecord_Mismatched(t *testing.T) {
	record := &Record{Means: []float64{1, 2}, Counts: []uint64{1}}
	_, err := record.Hist()
	assert.Error(t, err)

	record = &Record{Capacity: 1, Means: []float64{1, 2}, Counts: []uint64{1, 1}, Min: math.NaN(), Max: math.NaN()}
	_, err = record.Hist()
	assert.True(t, errors.Is(err, hist.ErrInvalidCapacity))
}

func TestCapnp_RoundTrip(t *testing.T) {
	for _, h := range []*hist.StreamHist{sampleHist(t), emptyHist(t)} {
		buf, err := HistToBytes(h)
		require.NoError(t, err)
		back, err := BytesToHist(buf)
		require.NoError(t, err)
		assert.True(t, back.Equal(h))
	}

	_, err := BytesToHist([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMsgpack_RoundTrip(t *testing.T) {
	for _, h := range []*hist.StreamHist{sampleHist(t), emptyHist(t)} {
		var buf bytes.Buffer
		require.NoError(t, WriteMsgpack(&buf, h))
		back, err := ReadMsgpack(&buf)
		require.NoError(t, err)
		assert.True(t, back.Equal(h))
	}
}

func TestMsgpack_MarshalMatchesEncode(t *testing.T) {
	record := NewRecord(sampleHist(t))
	marshalled, err := record.MarshalMsg(nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(marshalled), record.Msgsize())

	var buf bytes.Buffer
	require.NoError(t, msgp.Encode(&buf, record))
	assert.Equal(t, marshalled, buf.Bytes())

	decoded := &Record{}
	rest, err := decoded.UnmarshalMsg(marshalled)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, record, decoded)
}

func TestMsgpack_UnknownFieldsAndNil(t *testing.T) {
	o := msgp.AppendMapHeader(nil, 4)
	o = msgp.AppendString(o, "means")
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendFloat64(o, 3)
	o = msgp.AppendFloat64(o, 1)
	o = msgp.AppendString(o, "counts")
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendUint64(o, 2)
	o = msgp.AppendUint64(o, 5)
	o = msgp.AppendString(o, "comment")
	o = msgp.AppendString(o, "ignored")
	o = msgp.AppendString(o, "min")
	o = msgp.AppendNil(o)

	h, err := ReadMsgpack(bytes.NewReader(o))
	require.NoError(t, err)
	assert.Equal(t, []hist.Bin{{Mean: 1, Count: 5}, {Mean: 3, Count: 2}}, h.Bins())
	assert.Equal(t, 2, h.Capacity())
	min, err := h.Min()
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, emptyHist(t)))
	assert.JSONEq(t, `{"means":[],"counts":[],"min":null,"max":null,"capacity":10}`, buf.String())

	h, err := ReadJSON(strings.NewReader(`{"means": [3, 1, 2], "counts": [2, 3, 4]}`))
	require.NoError(t, err)
	assert.Equal(t, []hist.Bin{{Mean: 1, Count: 3}, {Mean: 2, Count: 4}, {Mean: 3, Count: 2}}, h.Bins())
	assert.Equal(t, 3, h.Capacity())
	max, err := h.Max()
	require.NoError(t, err)
	assert.Equal(t, 3.0, max)

	h, err = ReadJSON(strings.NewReader(`{"means": [2, 2], "counts": [1, 1], "min": -1, "max": null, "capacity": 8}`))
	require.NoError(t, err)
	assert.Equal(t, []hist.Bin{{Mean: 2, Count: 2}}, h.Bins())
	min, err := h.Min()
	require.NoError(t, err)
	assert.Equal(t, -1.0, min)

	_, err = ReadJSON(strings.NewReader(`{"means": [1], "counts": [0]}`))
	assert.Error(t, err)
	_, err = ReadJSON(strings.NewReader(`{"means": `))
	assert.Error(t, err)
}

func TestJSON_RoundTrip(t *testing.T) {
	h := sampleHist(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, h))
	back, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.True(t, back.Equal(h))
}

func TestFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	h := sampleHist(t)
	for _, name := range []string{"hist.json", "hist.JSON", "hist.msgpack", "hist"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, h))
		back, err := ReadFile(path)
		require.NoError(t, err)
		assert.True(t, back.Equal(h), name)
	}

	assert.True(t, IsJSON("a/b.Json"))
	assert.False(t, IsJSON("a/json"))

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStatistics_RoundTrip(t *testing.T) {
	statistics := stats.NewStreamStatistics()
	for _, value := range []float64{3, -1, math.NaN(), 8} {
		statistics.Append(value)
	}
	buf, err := StatisticsToBytes(statistics)
	require.NoError(t, err)
	back, err := BytesToStatistics(buf)
	require.NoError(t, err)
	assert.Equal(t, statistics, back)

	empty := stats.NewStreamStatistics()
	buf, err = StatisticsToBytes(empty)
	require.NoError(t, err)
	back, err = BytesToStatistics(buf)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(back.Min))
	assert.Equal(t, uint64(0), back.NumValues)
}
