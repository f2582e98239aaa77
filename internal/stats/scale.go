package stats

import (
	"gonum.org/v1/gonum/floats"

	"gbmviz/internal/gbm"
)

// Scale holds the axis bounds shared by every frame of one run. It is
// derived once from the complete path matrix, never from a prefix, so
// that all frames render in one fixed coordinate system.
type Scale struct {
	MaxPrice     float64 `json:"max_price"`
	MinLogReturn float64 `json:"min_log_return"`
	MaxLogReturn float64 `json:"max_log_return"`
	MaxDensity   float64 `json:"max_density"`
}

// Compute derives the scale state from the full matrix. The density
// bound comes from a histogram over every cumulative log return in the
// run, binned by the same policy the per-frame histograms use.
func Compute(m gbm.Matrix, policy BinPolicy) Scale {
	s := Scale{MaxPrice: m.MaxValue()}

	rows := m.LogReturns()
	if len(rows) == 0 {
		return s
	}

	all := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		all = append(all, row...)
	}

	s.MinLogReturn = floats.Min(all)
	s.MaxLogReturn = floats.Max(all)
	s.MaxDensity = NewHistogram(all, policy).MaxDensity()

	return s
}

// SymmetricBound returns the half-width of the log-return axis:
// max(|min|, |max|), so the displayed range is [-bound, bound].
func (s Scale) SymmetricBound() float64 {
	lo, hi := s.MinLogReturn, s.MaxLogReturn
	if lo < 0 {
		lo = -lo
	}
	if hi < 0 {
		hi = -hi
	}
	if lo > hi {
		return lo
	}
	return hi
}

// DensityBound returns the upper limit of the density axis, the
// tallest bin plus 10% headroom.
func (s Scale) DensityBound() float64 {
	return s.MaxDensity * 1.1
}
