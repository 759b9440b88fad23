package core

import (
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"streamhist/density"
	"streamhist/hist"
	"testing"
)

func TestGetOpFromName(t *testing.T) {
	for _, name := range OpNames() {
		op, err := GetOpFromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, GetOpNameFromOpType(op.GetOpType()))
	}
	_, err := GetOpFromName("sum")
	assert.True(t, errors.Is(err, ErrUnknownOp))
	assert.Len(t, OpNames(), 10)
}

func TestStream_Query(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	stream, err := db.NewStream("q", 5)
	require.NoError(t, err)
	require.NoError(t, stream.AppendBatch([]float64{1, 2, 3, 4, 5}))

	expected := map[string]float64{
		"count":    5,
		"mean":     3,
		"variance": 2,
		"median":   3,
		"min":      1,
		"max":      5,
	}
	for name, want := range expected {
		got, err := stream.Query(name, nil)
		require.NoError(t, err, name)
		assert.InDelta(t, want, got, 1e-12, name)
	}

	q, err := stream.Query("quantile", NewQueryParams(0.2))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, q, 1e-12)

	p, err := stream.Query("cdf", NewQueryParams(3))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	d, err := stream.Query("density", NewQueryParams(3))
	require.NoError(t, err)
	kde, err := density.FromHist(stream.Hist())
	require.NoError(t, err)
	assert.Equal(t, kde.Density(3), d)

	for _, name := range []string{"quantile", "cdf", "density"} {
		_, err := stream.Query(name, nil)
		assert.True(t, errors.Is(err, ErrMissingArg), name)
	}
	_, err = stream.Query("quantile", NewQueryParams(2))
	assert.True(t, errors.Is(err, hist.ErrInvalidQuantile))
	assert.Contains(t, err.Error(), `stream "q": quantile`)
	_, err = stream.Query("nope", nil)
	assert.True(t, errors.Is(err, ErrUnknownOp))
}

func TestStream_QueryEmpty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	stream, err := db.NewStream("empty", 3)
	require.NoError(t, err)

	count, err := stream.Query("count", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, count)
	for _, name := range []string{"mean", "stddev", "min", "max", "median"} {
		_, err := stream.Query(name, nil)
		assert.True(t, errors.Is(err, hist.ErrEmptyHistogram), name)
	}
	_, err = stream.Query("density", NewQueryParams(0))
	assert.True(t, errors.Is(err, hist.ErrEmptyHistogram))
}
