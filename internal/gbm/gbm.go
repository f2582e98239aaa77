// Package gbm generates ensembles of geometric Brownian motion price
// paths.
//
// A [Matrix] holds one simulated price per (step, path) pair; row 0 is
// the initial price broadcast across every path, and each later row is
// the previous row advanced by one multiplicative return factor:
//
//	factor = exp((mu - r*sigma^2)*dt + sigma*sqrt(dt)*Z)
//
// with dt = 1/horizon and Z drawn i.i.d. standard normal. Prices are
// strictly positive by construction.
package gbm

import (
	"fmt"
	"math"
	"math/rand"
)

// Params holds the fixed parameters of one simulation run.
type Params struct {
	PathCount    int     // number of independent paths
	Horizon      int     // number of discrete time steps
	Drift        float64 // mu
	Volatility   float64 // sigma
	InitialPrice float64 // S0
	Rate         float64 // r
}

// Validate checks parameter ranges. It returns an error wrapping
// ErrInvalidParameter for the first violation found.
func (p Params) Validate() error {
	if p.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidParameter, p.Horizon)
	}
	if p.PathCount <= 0 {
		return fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidParameter, p.PathCount)
	}
	if p.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %f", ErrInvalidParameter, p.Volatility)
	}
	if p.InitialPrice <= 0 {
		return fmt.Errorf("%w: initial price must be positive, got %f", ErrInvalidParameter, p.InitialPrice)
	}
	return nil
}

// Matrix is a (horizon+1) x pathCount grid of simulated prices.
// Row t holds the price of every path at step t. It is read-only after
// generation and safe to share across goroutines.
type Matrix [][]float64

// Steps returns the horizon (number of steps after the initial row).
func (m Matrix) Steps() int { return len(m) - 1 }

// Paths returns the number of paths.
func (m Matrix) Paths() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// MaxValue returns the largest price anywhere in the matrix.
func (m Matrix) MaxValue() float64 {
	max := math.Inf(-1)
	for _, row := range m {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// LogReturns returns the cumulative log return of every path at every
// step t >= 1, relative to the initial price: log(m[t][p] / m[0][p]).
// The result has shape horizon x pathCount.
func (m Matrix) LogReturns() [][]float64 {
	if len(m) < 2 {
		return nil
	}
	s0 := m[0]
	out := make([][]float64, len(m)-1)
	for t := 1; t < len(m); t++ {
		row := make([]float64, len(m[t]))
		for p, v := range m[t] {
			row[p] = math.Log(v / s0[p])
		}
		out[t-1] = row
	}
	return out
}

// RowLogReturns returns the cumulative log return of every path at a
// single step t. For t = 0 it returns nil: no returns have accumulated
// yet.
func (m Matrix) RowLogReturns(t int) []float64 {
	if t <= 0 || t >= len(m) {
		return nil
	}
	out := make([]float64, len(m[t]))
	for p, v := range m[t] {
		out[p] = math.Log(v / m[0][p])
	}
	return out
}

// Generate simulates an ensemble of GBM paths. The returned matrix has
// shape (p.Horizon+1) x p.PathCount with row 0 equal to p.InitialPrice
// everywhere. Generation is deterministic for a given rng seed and
// performs no I/O.
func Generate(p Params, rng *rand.Rand) (Matrix, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	dt := 1.0 / float64(p.Horizon)
	driftTerm := (p.Drift - p.Rate*p.Volatility*p.Volatility) * dt
	volTerm := p.Volatility * math.Sqrt(dt)

	m := make(Matrix, p.Horizon+1)
	m[0] = make([]float64, p.PathCount)
	for j := range m[0] {
		m[0][j] = p.InitialPrice
	}

	for t := 1; t <= p.Horizon; t++ {
		row := make([]float64, p.PathCount)
		prev := m[t-1]
		for j := range row {
			z := rng.NormFloat64()
			row[j] = prev[j] * math.Exp(driftTerm+volTerm*z)
		}
		m[t] = row
	}

	return m, nil
}
