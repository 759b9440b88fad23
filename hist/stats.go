package hist

import (
	"github.com/cockroachdb/errors"
	"math"
)

// Interpolation treats the observed minimum and maximum as zero-count
// bins placed before the first and after the last real bin.

// Mean is the count-weighted mean of the bin means.
func (h *StreamHist) Mean() (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	sum := 0.0
	h.Each(func(bin Bin) bool {
		sum += bin.Mean * float64(bin.Count)
		return true
	})
	if !math.IsInf(sum, 0) && !math.IsNaN(sum) {
		return sum / float64(h.Count()), nil
	}
	// The sum left the float64 range; folding the bins pairwise keeps
	// every partial result between the bin means.
	mean, weight := 0.0, 0.0
	h.Each(func(bin Bin) bool {
		mean = weightedMean(mean, weight, bin.Mean, float64(bin.Count))
		weight += float64(bin.Count)
		return true
	})
	return mean, nil
}

// Variance is the population variance, taking all mass of a bin to sit at
// its mean.
func (h *StreamHist) Variance() (float64, error) {
	mean, err := h.Mean()
	if err != nil {
		return math.NaN(), err
	}
	sum := 0.0
	h.Each(func(bin Bin) bool {
		delta := bin.Mean - mean
		sum += float64(bin.Count) * delta * delta
		return true
	})
	return sum / float64(h.Count()), nil
}

func (h *StreamHist) StdDev() (float64, error) {
	variance, err := h.Variance()
	if err != nil {
		return math.NaN(), err
	}
	return math.Sqrt(variance), nil
}

// neighbors returns the bins around position idx, substituting the
// zero-count boundary bins at both ends.
func (h *StreamHist) neighbors(idx int) (Bin, Bin) {
	n := h.bins.Len()
	if idx == 0 {
		return Bin{Mean: h.min, Count: 0}, h.bins.At(0)
	}
	if idx >= n {
		return h.bins.At(n - 1), Bin{Mean: h.max, Count: 0}
	}
	return h.bins.At(idx - 1), h.bins.At(idx)
}

// CountBy estimates how many observations are smaller than x (Algorithm 3,
// "Sum Procedure").
func (h *StreamHist) CountBy(x float64) (float64, error) {
	if math.IsNaN(x) {
		return math.NaN(), errors.Wrapf(ErrInvalidInput, "value %v", x)
	}
	if h.IsEmpty() || x <= h.min {
		return 0, nil
	}
	if x > h.max {
		return float64(h.Count()), nil
	}

	idx := h.bins.partitionPoint(x)
	sum := 0.0
	for i := 0; i < idx-1; i++ {
		sum += float64(h.bins.At(i).Count)
	}
	left, right := h.neighbors(idx)
	pi, mi := left.Mean, float64(left.Count)
	pj, mj := right.Mean, float64(right.Count)

	s := 0.0
	if pj-pi > 0 {
		mb := mi + (mj-mi)/(pj-pi)*(x-pi)
		s = (mi + mb) / 2 * (x - pi) / (pj - pi)
	}
	return sum + mi/2 + s, nil
}

// CDF estimates the cumulative probability at x: 0 at or below the
// observed minimum, 1 above the observed maximum.
func (h *StreamHist) CDF(x float64) (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	count, err := h.CountBy(x)
	if err != nil {
		return math.NaN(), err
	}
	return count / float64(h.Count()), nil
}

// Quantile estimates the value below which a fraction q of the
// observations fall (Algorithm 4, "Uniform Procedure").
func (h *StreamHist) Quantile(q float64) (float64, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return math.NaN(), errors.Wrapf(ErrInvalidQuantile, "quantile %v", q)
	}
	if h.IsEmpty() {
		return math.NaN(), ErrEmptyHistogram
	}
	if q == 0 {
		return h.min, nil
	}
	if q == 1 {
		return h.max, nil
	}

	target := q * float64(h.Count())
	idx, sum := h.findCumulative(target)
	left, right := h.neighbors(idx)
	pi, mi := left.Mean, float64(left.Count)
	pj, mj := right.Mean, float64(right.Count)

	d := target - sum
	a := mj - mi
	var z float64
	if a == 0 {
		z = d / mi
	} else {
		b := 2 * mi
		c := -2 * d
		z = (-b + math.Sqrt(math.Max(b*b-4*a*c, 0))) / (2 * a)
	}
	z = math.Max(0, math.Min(1, z))
	return pi + (pj-pi)*z, nil
}

// findCumulative walks the bins and returns the index of the first bin
// whose interpolated cumulative count, taken at its mean, exceeds target,
// together with the cumulative count at the mean before it.
func (h *StreamHist) findCumulative(target float64) (int, float64) {
	idx := 0
	sum := 0.0
	prev := 0.0
	for ; idx < h.bins.Len(); idx++ {
		half := float64(h.bins.At(idx).Count) / 2
		if sum+prev+half > target {
			break
		}
		sum += prev + half
		prev = half
	}
	return idx, sum
}

func (h *StreamHist) Median() (float64, error) {
	return h.Quantile(0.5)
}
