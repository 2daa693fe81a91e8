package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// MinimizeBounded minimizes f over the box given by bounds with gonum's
// Nelder-Mead. Every point is clamped into the box before f sees it, and
// the returned X is clamped as well.
func MinimizeBounded(f func([]float64) float64, x0 []float64, bounds []Bound, s Settings) (Result, error) {
	s = s.withDefaults()
	if len(x0) == 0 || len(bounds) != len(x0) {
		return Result{}, fmt.Errorf("%w: %d bounds for %d variables", ErrBounds, len(bounds), len(x0))
	}
	for i, b := range bounds {
		if !b.valid() {
			return Result{}, fmt.Errorf("%w: variable %d has [%g, %g]", ErrBounds, i, b.Lo, b.Hi)
		}
	}

	start := Project(append([]float64(nil), x0...), bounds)
	scratch := make([]float64, len(x0))
	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evals++
			copy(scratch, x)
			return finite(f(Project(scratch, bounds)))
		},
	}

	settings := &optimize.Settings{
		MajorIterations: s.MaxIter,
		FuncEvaluations: s.MaxEval,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.FTol,
			Relative:   s.FTol,
			Iterations: 50,
		},
	}
	if s.Progress != nil {
		settings.Recorder = &progressRecorder{bounds: bounds, report: s.report}
	}

	method := &optimize.NelderMead{}
	if s.InitialStep > 0 {
		method.SimplexSize = s.InitialStep
	}

	res, err := optimize.Minimize(problem, start, settings, method)
	if res == nil {
		return Result{}, fmt.Errorf("nelder-mead: %w", err)
	}

	out := Result{
		X:           Project(append([]float64(nil), res.X...), bounds),
		F:           res.F,
		Evaluations: evals,
		Iterations:  res.Stats.MajorIterations,
		Message:     res.Status.String(),
	}
	switch res.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge, optimize.StepConvergence:
		out.Converged = true
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
	default:
		if err != nil {
			return out, fmt.Errorf("nelder-mead: %w", err)
		}
	}
	if out.F == math.MaxFloat64 {
		out.Converged = false
		out.Message = "no finite objective value found"
	}
	return out, nil
}

// progressRecorder forwards gonum's major iterations to Settings.Progress.
type progressRecorder struct {
	bounds []Bound
	report func(iter, evals int, x []float64, f float64)
}

func (r *progressRecorder) Init() error { return nil }

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op != optimize.MajorIteration || loc == nil || stats == nil {
		return nil
	}
	x := Project(append([]float64(nil), loc.X...), r.bounds)
	r.report(stats.MajorIterations, stats.FuncEvaluations, x, loc.F)
	return nil
}
