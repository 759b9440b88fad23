package hist

import (
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestFastQuantile(t *testing.T) {
	h := oneToFive(t)
	for q, expected := range map[float64]float64{0: 1, 0.5: 2, 1: 5} {
		value, err := h.FastQuantile(q)
		require.NoError(t, err)
		assert.Equal(t, expected, value, "q=%v", q)
	}

	for _, q := range []float64{math.NaN(), -1, 2} {
		_, err := h.FastQuantile(q)
		assert.True(t, errors.Is(err, ErrInvalidQuantile))
	}
	_, err := mustNew(t, 2).FastQuantile(0.5)
	assert.True(t, errors.Is(err, ErrEmptyHistogram))
}

func TestFastCountBy(t *testing.T) {
	h := oneToFive(t)
	for x, expected := range map[float64]float64{0: 0, 1: 0, 3: 3, 3.5: 3, 5: 5, 6: 5} {
		count, err := h.FastCountBy(x)
		require.NoError(t, err)
		assert.Equal(t, expected, count, "x=%v", x)
	}

	p, err := h.FastCDF(3)
	require.NoError(t, err)
	assert.Equal(t, 0.6, p)

	_, err = h.FastCountBy(math.NaN())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
