package stats

import (
	"math"
	"math/rand"
	"testing"

	"gbmviz/internal/gbm"
)

func TestBinPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy BinPolicy
		n      int
		want   int
	}{
		{"sqrt of 100", SqrtCount, 100, 10},
		{"sqrt rounds down", SqrtCount, 10, 3},
		{"sqrt of 1", SqrtCount, 1, 1},
		{"sqrt of 0", SqrtCount, 0, 1},
		{"fixed 30", FixedBins(30), 5, 30},
		{"fixed clamps to 1", FixedBins(0), 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy(tt.n); got != tt.want {
				t.Errorf("bins(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestParseBinPolicy(t *testing.T) {
	p, err := ParseBinPolicy("sqrt")
	if err != nil {
		t.Fatalf("parse sqrt: %v", err)
	}
	if p(100) != 10 {
		t.Error("expected sqrt policy")
	}

	p, err = ParseBinPolicy("30")
	if err != nil {
		t.Fatalf("parse 30: %v", err)
	}
	if p(100) != 30 {
		t.Error("expected fixed 30 bins")
	}

	for _, bad := range []string{"none", "-5", "0", "3.5"} {
		if _, err := ParseBinPolicy(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestHistogramDensity(t *testing.T) {
	values := []float64{0, 0.25, 0.5, 0.75, 1}
	h := NewHistogram(values, FixedBins(2))

	if len(h.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(h.Edges))
	}
	if len(h.Density) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(h.Density))
	}

	// Densities integrate to one over the binned range.
	total := 0.0
	for i, d := range h.Density {
		total += d * (h.Edges[i+1] - h.Edges[i])
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("density integrates to %v, want 1", total)
	}
}

func TestHistogramIncludesMax(t *testing.T) {
	// The sample maximum falls exactly on the last edge; it must land
	// in the top bin instead of being dropped (or panicking in the
	// binning routine).
	values := []float64{-0.3, -0.1, 0, 0.2, 0.4}
	h := NewHistogram(values, FixedBins(4))

	if got := h.Edges[len(h.Edges)-1]; got != 0.4 {
		t.Errorf("top edge = %v, want 0.4", got)
	}

	n := float64(len(values))
	count := 0.0
	for i, d := range h.Density {
		count += d * (h.Edges[i+1] - h.Edges[i]) * n
	}
	if math.Abs(count-n) > 1e-9 {
		t.Errorf("histogram holds %v samples, want %v", count, n)
	}
	if top := h.Density[len(h.Density)-1]; top <= 0 {
		t.Errorf("top bin density = %v, want > 0", top)
	}
}

func TestHistogramDegenerate(t *testing.T) {
	// All-equal samples must not divide by zero; the range expands to
	// value +/- 0.5.
	values := []float64{0, 0, 0, 0}
	h := NewHistogram(values, SqrtCount)

	if h.Edges[0] != -0.5 || h.Edges[len(h.Edges)-1] != 0.5 {
		t.Errorf("expected range [-0.5, 0.5], got [%v, %v]", h.Edges[0], h.Edges[len(h.Edges)-1])
	}
	for i, d := range h.Density {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			t.Errorf("bin %d density is not finite: %v", i, d)
		}
	}
	if h.MaxDensity() <= 0 {
		t.Errorf("expected positive max density, got %v", h.MaxDensity())
	}
}

func TestHistogramEmpty(t *testing.T) {
	h := NewHistogram(nil, SqrtCount)
	if h.MaxDensity() != 0 {
		t.Errorf("expected zero density for empty input, got %v", h.MaxDensity())
	}
}

func TestComputeScaleDegenerate(t *testing.T) {
	// The zero-volatility example: a constant 3x2 matrix. All log
	// returns are zero and the histogram is degenerate but finite.
	m := gbm.Matrix{
		{100, 100, 100},
		{100, 100, 100},
		{100, 100, 100},
	}

	s := Compute(m, SqrtCount)

	if s.MaxPrice != 100 {
		t.Errorf("MaxPrice = %v, want 100", s.MaxPrice)
	}
	if s.MinLogReturn != 0 || s.MaxLogReturn != 0 {
		t.Errorf("expected zero log-return bounds, got [%v, %v]", s.MinLogReturn, s.MaxLogReturn)
	}
	if math.IsNaN(s.MaxDensity) || math.IsInf(s.MaxDensity, 0) || s.MaxDensity <= 0 {
		t.Errorf("expected finite positive MaxDensity, got %v", s.MaxDensity)
	}
}

func TestScaleBoundsNeverViolated(t *testing.T) {
	p := gbm.Params{PathCount: 50, Horizon: 40, Drift: 0.05, Volatility: 0.3, InitialPrice: 100, Rate: 0.01}
	m, err := gbm.Generate(p, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	s := Compute(m, SqrtCount)
	bound := s.SymmetricBound()

	for t1 := 0; t1 <= p.Horizon; t1++ {
		for _, v := range m[t1] {
			if v > s.MaxPrice {
				t.Fatalf("price %v at step %d exceeds MaxPrice %v", v, t1, s.MaxPrice)
			}
		}
		for _, lr := range m.RowLogReturns(t1) {
			if math.Abs(lr) > bound {
				t.Fatalf("log return %v at step %d exceeds symmetric bound %v", lr, t1, bound)
			}
		}
	}
}

func TestSymmetricBound(t *testing.T) {
	tests := []struct {
		min, max, want float64
	}{
		{-0.5, 0.3, 0.5},
		{-0.2, 0.7, 0.7},
		{0, 0, 0},
	}
	for _, tt := range tests {
		s := Scale{MinLogReturn: tt.min, MaxLogReturn: tt.max}
		if got := s.SymmetricBound(); got != tt.want {
			t.Errorf("SymmetricBound(%v, %v) = %v, want %v", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDensityBound(t *testing.T) {
	s := Scale{MaxDensity: 10}
	if got := s.DensityBound(); math.Abs(got-11) > 1e-12 {
		t.Errorf("DensityBound() = %v, want 11", got)
	}
}
