package optim

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// GridSearch evaluates an objective at every combination of per-variable
// values and keeps the smallest.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

func (g *GridSearch) Names() []string { return g.paramNames }

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search minimizes f over the grid. Cancelling ctx stops the walk and
// returns the best point found so far with ctx's error.
func (g *GridSearch) Search(ctx context.Context, f func(x []float64) float64) (Result, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Result{}, fmt.Errorf("%w: %d names for %d value lists", ErrBounds, len(g.paramNames), len(g.ranges))
	}
	if g.Size() == 0 {
		return Result{}, fmt.Errorf("%w: empty grid", ErrBounds)
	}

	var best Result
	current := make([]float64, len(g.ranges))
	err := g.searchRecursive(ctx, 0, current, f, &best)
	if err != nil {
		best.Message = "interrupted"
		return best, err
	}

	best.Converged = best.X != nil
	best.Iterations = best.Evaluations
	best.Message = fmt.Sprintf("%d grid points", best.Evaluations)
	return best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current []float64, f func([]float64) float64, best *Result) error {
	if depth == len(g.ranges) {
		if err := ctx.Err(); err != nil {
			return err
		}

		val := finite(f(append([]float64(nil), current...)))
		best.Evaluations++
		if best.X == nil || val < best.F {
			best.F = val
			best.X = append(best.X[:0], current...)
		}
		return nil
	}

	for _, val := range g.ranges[depth] {
		current[depth] = val
		if err := g.searchRecursive(ctx, depth+1, current, f, best); err != nil {
			return err
		}
	}
	return nil
}
