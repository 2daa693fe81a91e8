// Package optim holds the bounded optimizers used to tune a swing: a Brent
// scalar search, a box-constrained Nelder-Mead built on gonum/optimize and
// an exhaustive grid search.
package optim

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonConvergence is returned by Result.Err when the budget ran out
// before the tolerance was met.
var ErrNonConvergence = errors.New("optim: optimizer did not converge")

// ErrBounds reports an unusable search domain.
var ErrBounds = errors.New("optim: invalid bounds")

// Result is the outcome of one optimization. X and F are the best point
// seen even when Converged is false.
type Result struct {
	X           []float64
	F           float64
	Converged   bool
	Evaluations int
	Iterations  int
	Message     string
}

// Err returns nil for a converged result and an error wrapping
// ErrNonConvergence otherwise.
func (r Result) Err() error {
	if r.Converged {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNonConvergence, r.Message)
}

// Progress is one step of an optimizer as seen by a Settings.Progress hook.
type Progress struct {
	Iteration   int
	Evaluations int
	X           []float64
	F           float64
}

// Settings bounds an optimizer run. Zero fields take the defaults.
type Settings struct {
	XTol    float64
	FTol    float64
	MaxIter int
	MaxEval int
	// InitialStep is the Nelder-Mead simplex edge length.
	InitialStep float64
	// Progress, when set, is called once per major iteration with the best
	// point so far.
	Progress func(Progress)
}

func DefaultSettings() Settings {
	return Settings{
		XTol:    1e-5,
		FTol:    1e-8,
		MaxIter: 500,
		MaxEval: 2000,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.XTol <= 0 {
		s.XTol = d.XTol
	}
	if s.FTol <= 0 {
		s.FTol = d.FTol
	}
	if s.MaxIter <= 0 {
		s.MaxIter = d.MaxIter
	}
	if s.MaxEval <= 0 {
		s.MaxEval = d.MaxEval
	}
	return s
}

func (s Settings) report(iter, evals int, x []float64, f float64) {
	if s.Progress == nil {
		return
	}
	s.Progress(Progress{Iteration: iter, Evaluations: evals, X: append([]float64(nil), x...), F: f})
}

// Bound is a closed interval [Lo, Hi].
type Bound struct {
	Lo, Hi float64
}

func (b Bound) Clamp(v float64) float64 {
	return math.Max(b.Lo, math.Min(b.Hi, v))
}

func (b Bound) Contains(v float64) bool {
	return v >= b.Lo && v <= b.Hi
}

func (b Bound) valid() bool {
	return !math.IsNaN(b.Lo) && !math.IsNaN(b.Hi) && !math.IsInf(b.Lo, 0) && !math.IsInf(b.Hi, 0) && b.Lo <= b.Hi
}

// Project clamps x into the box in place and returns it.
func Project(x []float64, bounds []Bound) []float64 {
	for i := range x {
		x[i] = bounds[i].Clamp(x[i])
	}
	return x
}

// finite maps NaN and +Inf to the largest float so that comparisons in the
// optimizers stay well defined.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
