package optim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimizeBounded_ConstrainedMinimum(t *testing.T) {
	bounds := []Bound{{Lo: 0, Hi: 2}, {Lo: 0, Hi: 2}}
	outside := 0
	f := func(x []float64) float64 {
		for i, v := range x {
			if !bounds[i].Contains(v) {
				outside++
			}
		}
		return (x[0]-5)*(x[0]-5) + (x[1]+3)*(x[1]+3)
	}

	res, err := MinimizeBounded(f, []float64{1, 1}, bounds, Settings{InitialStep: 0.5})
	require.NoError(t, err)

	assert.Zero(t, outside, "objective evaluated outside the box")
	assert.InDelta(t, 2, res.X[0], 1e-3)
	assert.InDelta(t, 0, res.X[1], 1e-3)
	assert.Greater(t, res.Evaluations, 0)
}

func TestMinimizeBounded_Rosenbrock(t *testing.T) {
	rosen := func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	}
	bounds := []Bound{{Lo: -5, Hi: 5}, {Lo: -5, Hi: 5}}

	res, err := MinimizeBounded(rosen, []float64{-1.2, 1}, bounds, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, res.Converged, res.Message)
	assert.InDelta(t, 1, res.X[0], 1e-2)
	assert.InDelta(t, 1, res.X[1], 1e-2)
}

func TestMinimizeBounded_StartOutsideBox(t *testing.T) {
	bounds := []Bound{{Lo: -1, Hi: 1}}
	res, err := MinimizeBounded(func(x []float64) float64 { return x[0] * x[0] }, []float64{10}, bounds, Settings{InitialStep: 0.25})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.X[0], 1e-3)
}

func TestMinimizeBounded_BudgetExhausted(t *testing.T) {
	rosen := func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	}
	bounds := []Bound{{Lo: -5, Hi: 5}, {Lo: -5, Hi: 5}}

	res, err := MinimizeBounded(rosen, []float64{-1.2, 1}, bounds, Settings{MaxIter: 2})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.True(t, errors.Is(res.Err(), ErrNonConvergence))
	assert.Len(t, res.X, 2)
}

func TestMinimizeBounded_InvalidBounds(t *testing.T) {
	f := func(x []float64) float64 { return 0 }

	_, err := MinimizeBounded(f, []float64{1, 2}, []Bound{{Lo: 0, Hi: 1}}, DefaultSettings())
	assert.True(t, errors.Is(err, ErrBounds))

	_, err = MinimizeBounded(f, []float64{1}, []Bound{{Lo: 2, Hi: 1}}, DefaultSettings())
	assert.True(t, errors.Is(err, ErrBounds))

	_, err = MinimizeBounded(f, nil, nil, DefaultSettings())
	assert.True(t, errors.Is(err, ErrBounds))
}

func TestMinimizeBounded_Progress(t *testing.T) {
	calls := 0
	s := DefaultSettings()
	s.Progress = func(p Progress) {
		calls++
		assert.Len(t, p.X, 2)
	}

	_, err := MinimizeBounded(func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] }, []float64{1, 1}, []Bound{{Lo: -2, Hi: 2}, {Lo: -2, Hi: 2}}, s)
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
}

func TestProject(t *testing.T) {
	bounds := []Bound{{Lo: 0, Hi: 1}, {Lo: -1, Hi: 1}, {Lo: 5, Hi: 5}}
	x := Project([]float64{2, -3, 0}, bounds)
	assert.Equal(t, []float64{1, -1, 5}, x)
}
