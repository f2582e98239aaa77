// Package stats computes the cross-sectional statistics behind the
// animation: density histograms of log returns and the fixed axis
// bounds shared by every frame.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BinPolicy maps a sample size to a histogram bin count. Policies are
// plain values so callers can swap the binning strategy without
// touching the histogram code.
type BinPolicy func(sampleSize int) int

// SqrtCount bins with the square root of the sample size.
func SqrtCount(n int) int {
	b := int(math.Sqrt(float64(n)))
	if b < 1 {
		b = 1
	}
	return b
}

// FixedBins always uses n bins regardless of sample size.
func FixedBins(n int) BinPolicy {
	return func(int) int {
		if n < 1 {
			return 1
		}
		return n
	}
}

// ParseBinPolicy reads a policy from its config form: "sqrt" or a
// positive integer.
func ParseBinPolicy(s string) (BinPolicy, error) {
	if s == "" || s == "sqrt" {
		return SqrtCount, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("invalid bin policy %q: want \"sqrt\" or a positive integer", s)
	}
	return FixedBins(n), nil
}

// Histogram is a density histogram: len(Edges) == len(Density)+1 and
// the densities integrate to one over the binned range.
type Histogram struct {
	Edges   []float64
	Density []float64
}

// NewHistogram bins values into a density histogram using the given
// policy for the bin count. A zero-span sample (all values equal) is
// binned over value +/- 0.5 so the density stays finite.
func NewHistogram(values []float64, policy BinPolicy) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}

	lo := floats.Min(values)
	hi := floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	bins := policy(len(values))
	edges := make([]float64, bins+1)
	span := hi - lo
	for i := range edges {
		edges[i] = lo + span*float64(i)/float64(bins)
	}
	edges[bins] = hi

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// stat.Histogram requires max(x) strictly below the last divider;
	// nudge it one ulp up so the top bin is right-inclusive. The
	// returned edges and the density widths stay nominal.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	density := make([]float64, bins)
	n := float64(len(values))
	for i, c := range counts {
		width := edges[i+1] - edges[i]
		density[i] = c / (n * width)
	}

	return Histogram{Edges: edges, Density: density}
}

// MaxDensity returns the tallest bin, or zero for an empty histogram.
func (h Histogram) MaxDensity() float64 {
	if len(h.Density) == 0 {
		return 0
	}
	return floats.Max(h.Density)
}
