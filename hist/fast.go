package hist

import (
	"github.com/cockroachdb/errors"
	"math"
)

// The Fast variants skip interpolation: a bin counts as a whole once x
// reaches its mean. They are cheaper and coarser than CountBy, CDF and
// Quantile.

func (h *StreamHist) FastCountBy(x float64) (float64, error) {
	if math.IsNaN(x) {
		return math.NaN(), errors.Wrapf(ErrInvalidInput, "value %v", x)
	}
	if h.IsEmpty() || x <= h.min {
		return 0, nil
	}
	if x > h.max {
		return float64(h.Count()), nil
	}
	sum := uint64(0)
	h.Each(func(bin Bin) bool {
		if bin.Mean > x {
			return false
		}
		sum += bin.Count
		return true
	})
	return float64(sum), nil
}

func (h *StreamHist) FastCDF(x float64) (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	count, err := h.FastCountBy(x)
	if err != nil {
		return math.NaN(), err
	}
	return count / float64(h.Count()), nil
}

// FastQuantile returns the mean of the last bin whose cumulative count
// does not exceed q*Count, or the minimum when there is none.
func (h *StreamHist) FastQuantile(q float64) (float64, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return math.NaN(), errors.Wrapf(ErrInvalidQuantile, "quantile %v", q)
	}
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	target := q * float64(h.Count())
	value := h.min
	acc := 0.0
	h.Each(func(bin Bin) bool {
		acc += float64(bin.Count)
		if acc > target {
			return false
		}
		value = bin.Mean
		return true
	})
	return value, nil
}
