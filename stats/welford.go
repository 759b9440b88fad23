package stats

import "math"

type Welford struct {
	count uint64
	mean  float64
	m2    float64
}

func NewWelford() *Welford {
	return &Welford{
		count: 0,
		mean:  0,
		m2:    0,
	}
}

// RestoreWelford rebuilds an accumulator from its persisted state.
func RestoreWelford(count uint64, mean, m2 float64) *Welford {
	return &Welford{
		count: count,
		mean:  mean,
		m2:    m2,
	}
}

func (welford *Welford) Update(value float64) {
	welford.count++
	delta := value - welford.mean
	welford.mean += delta / float64(welford.count)
	delta2 := value - welford.mean
	welford.m2 += delta * delta2
}

// Merge folds other into welford using the pairwise combination of
// Chan et al. other is not modified.
func (welford *Welford) Merge(other *Welford) {
	if other.count == 0 {
		return
	}
	if welford.count == 0 {
		*welford = *other
		return
	}
	count := welford.count + other.count
	delta := other.mean - welford.mean
	n1, n2, n := float64(welford.count), float64(other.count), float64(count)
	welford.mean += delta * n2 / n
	welford.m2 += other.m2 + delta*delta*n1*n2/n
	welford.count = count
}

func (welford *Welford) Clone() *Welford {
	clone := *welford
	return &clone
}

func (welford *Welford) GetCount() uint64 {
	return welford.count
}

func (welford *Welford) GetMean() float64 {
	return welford.mean
}

func (welford *Welford) GetM2() float64 {
	return welford.m2
}

func (welford *Welford) GetVariance() float64 {
	if welford.count < 2 {
		return 0
	}
	return welford.m2 / float64(welford.count)
}

func (welford *Welford) GetSampleVariance() float64 {
	if welford.count < 2 {
		return 0
	}
	return welford.m2 / float64(welford.count-1)
}

func (welford *Welford) GetSD() float64 {
	return math.Sqrt(welford.GetSampleVariance())
}

func (welford *Welford) GetCV() float64 {
	if welford.count < 2 {
		return 0
	}
	return welford.GetSD() / welford.GetMean()
}
