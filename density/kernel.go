package density

import (
	"github.com/cockroachdb/errors"
	"math"
	"strings"
)

// Kernel selects the smoothing function placed on each bin.
type Kernel int

const (
	Gaussian Kernel = iota
	Triangular
	Epanechnikov
	Uniform
)

var kernelNames = map[Kernel]string{
	Gaussian:     "gaussian",
	Triangular:   "triangular",
	Epanechnikov: "epanechnikov",
	Uniform:      "uniform",
}

func (kernel Kernel) String() string {
	if name, ok := kernelNames[kernel]; ok {
		return name
	}
	return "unknown"
}

// Eval evaluates the kernel at u. Every kernel integrates to 1.
func (kernel Kernel) Eval(u float64) float64 {
	switch kernel {
	case Triangular:
		return 1 - math.Min(math.Abs(u), 1)
	case Epanechnikov:
		a := math.Min(math.Abs(u), 1)
		return 0.75 * (1 - a*a)
	case Uniform:
		if math.Abs(u) <= 1 {
			return 0.5
		}
		return 0
	default:
		return math.Exp(-0.5*u*u) / math.Sqrt(2*math.Pi)
	}
}

func ParseKernel(name string) (Kernel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kernel, kernelName := range kernelNames {
		if kernelName == name {
			return kernel, nil
		}
	}
	return Gaussian, errors.Newf("unknown kernel %q", name)
}
