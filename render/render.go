// Package render formats histograms for a terminal: a bar chart of the
// bins, a table of summary statistics and a plot of the kernel density.
package render

import (
	"fmt"
	"github.com/cockroachdb/errors"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"io"
	"math"
	"streamhist/density"
	"streamhist/hist"
	"streamhist/serde"
	"strconv"
	"strings"
)

const barGlyph = "■"

// FormatFloat prints up to three decimals, dropping trailing zeros, and
// falls back to exponent notation for very large or small magnitudes.
func FormatFloat(x float64) string {
	abs := math.Abs(x)
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 || (abs >= 1e-3 && abs < 1e9) {
		s := strconv.FormatFloat(x, 'f', 3, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
		return s
	}
	return strconv.FormatFloat(x, 'e', 3, 64)
}

// Bars writes one line per bin: the mean, the count and a bar scaled so
// that the fullest bin is width glyphs wide.
func Bars(w io.Writer, h *hist.StreamHist, width int) error {
	if width < 0 {
		return errors.Newf("bar width must not be negative, got %d", width)
	}
	maxCount := uint64(0)
	h.Each(func(bin hist.Bin) bool {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
		return true
	})

	if _, err := fmt.Fprintln(w, "mean\tcount"); err != nil {
		return err
	}
	var err error
	h.Each(func(bin hist.Bin) bool {
		barWidth := int(math.Round(float64(bin.Count) / float64(maxCount) * float64(width)))
		_, err = fmt.Fprintf(w, "%8s %d\t%s\n",
			FormatFloat(bin.Mean), bin.Count, strings.Repeat(barGlyph, barWidth))
		return err == nil
	})
	return err
}

// Statistics writes a table of summary statistics. Values that are
// undefined for an empty histogram print as NaN.
func Statistics(w io.Writer, h *hist.StreamHist) {
	value := func(stat func() (float64, error)) string {
		x, err := stat()
		if err != nil {
			return FormatFloat(math.NaN())
		}
		return FormatFloat(x)
	}
	quantile := func(q float64) func() (float64, error) {
		return func() (float64, error) { return h.Quantile(q) }
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Mean", value(h.Mean)},
		{"StDev", value(h.StdDev)},
		{"Min", value(h.Min)},
		{"25% quantile", value(quantile(0.25))},
		{"Median", value(h.Median)},
		{"75% quantile", value(quantile(0.75))},
		{"Max", value(h.Max)},
		{"Sample size", strconv.FormatUint(h.Count(), 10)},
	})
	table.Render()
}

// DensityPlot samples the estimate at width evenly spaced points of
// [lo, hi] and plots them height rows tall.
func DensityPlot(kde *density.KernelDensity, lo, hi float64, width, height int) (string, error) {
	if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return "", errors.Newf("invalid plot range [%v, %v]", lo, hi)
	}
	if width < 2 || height < 1 {
		return "", errors.Newf("invalid plot size %dx%d", width, height)
	}
	xs := make([]float64, width)
	step := (hi - lo) / float64(width-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	caption := fmt.Sprintf("%s kernel, bandwidth %s, x in [%s, %s]",
		kde.Kernel(), FormatFloat(kde.Bandwidth()), FormatFloat(lo), FormatFloat(hi))
	return asciigraph.Plot(kde.DensityEach(xs),
		asciigraph.Height(height),
		asciigraph.Caption(caption)), nil
}

// DensityRange widens the observed range of h by three bandwidths on each
// side, where the density of every kernel has mostly vanished.
func DensityRange(h *hist.StreamHist, kde *density.KernelDensity) (float64, float64, error) {
	min, err := h.Min()
	if err != nil {
		return 0, 0, err
	}
	max, err := h.Max()
	if err != nil {
		return 0, 0, err
	}
	margin := 3 * kde.Bandwidth()
	return min - margin, max + margin, nil
}

func JSON(w io.Writer, h *hist.StreamHist) error {
	return serde.WriteJSON(w, h)
}
