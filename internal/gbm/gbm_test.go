package gbm

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	p := Params{PathCount: 5, Horizon: 10, Drift: 0.05, Volatility: 0.2, InitialPrice: 100, Rate: 0.01}
	m, err := Generate(p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if m.Steps() != 10 {
		t.Errorf("expected 10 steps, got %d", m.Steps())
	}
	if m.Paths() != 5 {
		t.Errorf("expected 5 paths, got %d", m.Paths())
	}
	if len(m) != 11 {
		t.Errorf("expected 11 rows, got %d", len(m))
	}

	for j, v := range m[0] {
		if v != 100 {
			t.Errorf("row 0 path %d: expected initial price 100, got %f", j, v)
		}
	}

	for i, row := range m {
		for j, v := range row {
			if v <= 0 {
				t.Errorf("non-positive price at (%d, %d): %f", i, j, v)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := Params{PathCount: 7, Horizon: 20, Drift: 0.1, Volatility: 0.3, InitialPrice: 50, Rate: 0.02}

	a, err := Generate(p, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	b, err := Generate(p, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("matrices differ at (%d, %d): %v vs %v", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestGenerateZeroVolatility(t *testing.T) {
	// With sigma = 0 the noise has no effect: every factor is exp(mu*dt).
	// With mu = 0 as well the matrix is constant at the initial price.
	p := Params{PathCount: 3, Horizon: 2, Drift: 0, Volatility: 0, InitialPrice: 100, Rate: 0}
	m, err := Generate(p, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for i, row := range m {
		for j, v := range row {
			if v != 100 {
				t.Errorf("expected constant 100 at (%d, %d), got %f", i, j, v)
			}
		}
	}
}

func TestGenerateInvalidParams(t *testing.T) {
	valid := Params{PathCount: 3, Horizon: 5, Volatility: 0.1, InitialPrice: 100}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero horizon", func(p *Params) { p.Horizon = 0 }},
		{"negative horizon", func(p *Params) { p.Horizon = -1 }},
		{"zero paths", func(p *Params) { p.PathCount = 0 }},
		{"negative paths", func(p *Params) { p.PathCount = -3 }},
		{"negative volatility", func(p *Params) { p.Volatility = -0.1 }},
		{"zero initial price", func(p *Params) { p.InitialPrice = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := Generate(p, rand.New(rand.NewSource(1)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestLogReturns(t *testing.T) {
	m := Matrix{
		{100, 100},
		{110, 90},
		{121, 100},
	}

	lr := m.LogReturns()
	if len(lr) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lr))
	}

	want := [][]float64{
		{math.Log(1.1), math.Log(0.9)},
		{math.Log(1.21), 0},
	}
	for i := range want {
		for j := range want[i] {
			if math.Abs(lr[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("log return (%d, %d) = %v, want %v", i, j, lr[i][j], want[i][j])
			}
		}
	}
}

func TestRowLogReturns(t *testing.T) {
	m := Matrix{
		{100, 100},
		{110, 90},
	}

	if got := m.RowLogReturns(0); got != nil {
		t.Errorf("expected nil at t=0, got %v", got)
	}

	got := m.RowLogReturns(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 values, got %d", len(got))
	}
	if math.Abs(got[0]-math.Log(1.1)) > 1e-12 {
		t.Errorf("got %v, want %v", got[0], math.Log(1.1))
	}
}

func TestMaxValue(t *testing.T) {
	m := Matrix{
		{100, 100},
		{110, 90},
		{105, 130},
	}
	if got := m.MaxValue(); got != 130 {
		t.Errorf("MaxValue() = %v, want 130", got)
	}
}
