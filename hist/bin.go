package hist

import (
	"fmt"
	"math"
)

// Bin stands for Count observations collapsed to their arithmetic mean.
type Bin struct {
	Mean  float64
	Count uint64
}

// Merge returns the count-weighted average of both bins.
func (bin Bin) Merge(other Bin) Bin {
	total := bin.Count + other.Count
	return Bin{
		Mean:  weightedMean(bin.Mean, float64(bin.Count), other.Mean, float64(other.Count)),
		Count: total,
	}
}

// weightedMean is (a*wa + b*wb) / (wa + wb). Near the float64 range the
// products overflow, so the weights are normalized first.
func weightedMean(a, wa, b, wb float64) float64 {
	total := wa + wb
	mean := (a*wa + b*wb) / total
	if !math.IsInf(mean, 0) && !math.IsNaN(mean) {
		return mean
	}
	mean = a*(wa/total) + b*(wb/total)
	return math.Max(math.Min(a, b), math.Min(mean, math.Max(a, b)))
}

func (bin Bin) String() string {
	return fmt.Sprintf("(%g, %d)", bin.Mean, bin.Count)
}

func sumCounts(bins []Bin) uint64 {
	sum := uint64(0)
	for _, bin := range bins {
		sum += bin.Count
	}
	return sum
}
