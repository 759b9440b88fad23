package density

import (
	"github.com/cockroachdb/errors"
	"math"
	"streamhist/hist"
	"strings"
)

// Rule is a rule of thumb that picks a bandwidth from a histogram. The
// sample size n used by the rules is the number of bins, since the
// estimator places one kernel per bin.
type Rule int

const (
	Silverman Rule = iota
	Scott
	FreedmanDiaconis
	Sturges
	BinWidth
	// Auto is the larger of Sturges and FreedmanDiaconis.
	Auto
)

var ruleNames = map[Rule]string{
	Silverman:        "silverman",
	Scott:            "scott",
	FreedmanDiaconis: "fd",
	Sturges:          "sturges",
	BinWidth:         "binwidth",
	Auto:             "auto",
}

func (rule Rule) String() string {
	if name, ok := ruleNames[rule]; ok {
		return name
	}
	return "unknown"
}

func ParseRule(name string) (Rule, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for rule, ruleName := range ruleNames {
		if ruleName == name {
			return rule, nil
		}
	}
	return Silverman, errors.Newf("unknown bandwidth rule %q", name)
}

// Bandwidth applies the rule to h. Rules that degenerate to a zero or
// non-finite width, as when every observation has the same value,
// return 1.
func (rule Rule) Bandwidth(h *hist.StreamHist) (float64, error) {
	if h.IsEmpty() {
		return math.NaN(), hist.ErrEmptyHistogram
	}
	var bw float64
	switch rule {
	case Silverman:
		bw = silverman(h)
	case Scott:
		bw = scott(h)
	case FreedmanDiaconis:
		bw = freedmanDiaconis(h)
	case Sturges:
		bw = sturges(h)
	case BinWidth:
		bw = binWidth(h)
	case Auto:
		bw = math.Max(sturges(h), freedmanDiaconis(h))
	default:
		return math.NaN(), errors.Newf("unknown bandwidth rule %d", int(rule))
	}
	if math.IsNaN(bw) || math.IsInf(bw, 0) || bw <= 0 {
		return 1, nil
	}
	return bw, nil
}

func silverman(h *hist.StreamHist) float64 {
	n := float64(h.Len())
	a := stdDev(h)
	if spreadIQR := iqr(h) / 1.34; spreadIQR > 0 && spreadIQR < a {
		a = spreadIQR
	}
	return 0.9 * a * math.Pow(n, -0.2)
}

func scott(h *hist.StreamHist) float64 {
	n := float64(h.Len())
	return 3.5 * stdDev(h) / math.Cbrt(n)
}

func freedmanDiaconis(h *hist.StreamHist) float64 {
	n := float64(h.Len())
	return 2 * iqr(h) / math.Cbrt(n)
}

// sturges spreads the observed range over 1 + log2(count) bins.
func sturges(h *hist.StreamHist) float64 {
	k := 1 + math.Log2(float64(h.Count()))
	return spread(h) / k
}

func binWidth(h *hist.StreamHist) float64 {
	return spread(h) / float64(h.Len())
}

func spread(h *hist.StreamHist) float64 {
	min, err := h.Min()
	if err != nil {
		return math.NaN()
	}
	max, err := h.Max()
	if err != nil {
		return math.NaN()
	}
	return max - min
}

func stdDev(h *hist.StreamHist) float64 {
	sd, err := h.StdDev()
	if err != nil {
		return math.NaN()
	}
	return sd
}

// iqr uses the non-interpolating quantiles.
func iqr(h *hist.StreamHist) float64 {
	upper, err := h.FastQuantile(0.75)
	if err != nil {
		return math.NaN()
	}
	lower, err := h.FastQuantile(0.25)
	if err != nil {
		return math.NaN()
	}
	return upper - lower
}
