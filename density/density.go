// Package density estimates a smooth probability density from a
// streaming histogram by placing one weighted kernel on every bin.
package density

import (
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/hist"
)

var ErrInvalidBandwidth = errors.New("bandwidth must be positive and finite")

type Config struct {
	Kernel Kernel
	// Bandwidth overrides Rule when non-zero.
	Bandwidth float64
	Rule      Rule
}

func DefaultConfig() *Config {
	return &Config{
		Kernel: Gaussian,
		Rule:   Silverman,
	}
}

// KernelDensity is immutable once built and safe for concurrent use.
type KernelDensity struct {
	bins      []hist.Bin
	count     float64
	kernel    Kernel
	bandwidth float64
}

// New builds an estimator from a copy of the bins of h. A nil config means
// DefaultConfig.
func New(h *hist.StreamHist, config *Config) (*KernelDensity, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if h.IsEmpty() {
		return nil, hist.ErrEmptyHistogram
	}

	bandwidth := config.Bandwidth
	if bandwidth != 0 {
		if math.IsNaN(bandwidth) || math.IsInf(bandwidth, 0) || bandwidth < 0 {
			return nil, errors.Wrapf(ErrInvalidBandwidth, "bandwidth %v", bandwidth)
		}
	} else {
		var err error
		bandwidth, err = config.Rule.Bandwidth(h)
		if err != nil {
			return nil, err
		}
	}

	return &KernelDensity{
		bins:      h.Bins(),
		count:     float64(h.Count()),
		kernel:    config.Kernel,
		bandwidth: bandwidth,
	}, nil
}

func FromHist(h *hist.StreamHist) (*KernelDensity, error) {
	return New(h, nil)
}

func (kde *KernelDensity) Bandwidth() float64 {
	return kde.bandwidth
}

func (kde *KernelDensity) Kernel() Kernel {
	return kde.kernel
}

// Density evaluates sum(c_i/N * K((x - m_i)/h)) / h.
func (kde *KernelDensity) Density(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	sum := 0.0
	for _, bin := range kde.bins {
		u := (x - bin.Mean) / kde.bandwidth
		sum += float64(bin.Count) * kde.kernel.Eval(u)
	}
	return sum / (kde.count * kde.bandwidth)
}

func (kde *KernelDensity) DensityEach(xs []float64) []float64 {
	densities := make([]float64, len(xs))
	for i, x := range xs {
		densities[i] = kde.Density(x)
	}
	return densities
}
