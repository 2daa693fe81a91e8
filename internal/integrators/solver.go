package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
)

const maxBisections = 200

// Solver integrates a system over a span. Each Solve call builds its own
// stepper, so one Solver may serve several goroutines.
type Solver struct {
	Method string
	Config dynamo.Config
}

func NewSolver(method string, cfg dynamo.Config) *Solver {
	return &Solver{Method: method, Config: cfg}
}

// counter wraps a system to count derivative evaluations.
type counter struct {
	dynamo.System
	n int
}

func (c *counter) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	c.n++
	return c.System.Derive(x, u, t)
}

// Solve advances x0 from span.T0 toward span.TEnd. With a non-nil event it
// stops at the first zero crossing of event between accepted steps, located
// by bisection to Config.EventTol. The returned trajectory holds every
// accepted step and is returned even when the run fails.
//
// A run that exceeds Config.MaxSteps, cannot meet tolerance at MinStep,
// produces a non-finite state or leaves Config.StateBound ends Diverged and
// returns an error wrapping dynamo.ErrDiverged. A run given an event that
// reaches TEnd without it firing returns an error wrapping
// dynamo.ErrEventNotReached.
func (s *Solver) Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, span dynamo.Span, event dynamo.EventFunc) (*dynamo.Trajectory, dynamo.Diagnostics, error) {
	cfg := s.Config
	diag := dynamo.Diagnostics{Status: dynamo.Integrating}

	if err := cfg.Validate(); err != nil {
		return nil, diag, err
	}
	if !(span.TEnd > span.T0) {
		return nil, diag, fmt.Errorf("%w: empty span [%g, %g]", dynamo.ErrParameterBounds, span.T0, span.TEnd)
	}
	if len(x0) != dyn.StateDim() {
		return nil, diag, fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, diag, dynamo.ErrInvalidState
	}

	stepper, err := New(s.Method)
	if err != nil {
		return nil, diag, err
	}
	embedded, adaptive := stepper.(dynamo.EmbeddedStepper)

	sys := &counter{System: dyn}
	estimate := int(span.Duration()/cfg.MaxStep) + 2
	tr := dynamo.NewTrajectory(min(estimate, cfg.MaxSteps+2))

	t := span.T0
	x := x0.Clone()
	tr.Append(t, x)

	h := cfg.InitStep
	if h <= 0 || h > cfg.MaxStep {
		h = cfg.MaxStep
	}

	var gPrev float64
	if event != nil {
		gPrev = event(t, x)
	}

	diverge := func(reason error) (*dynamo.Trajectory, dynamo.Diagnostics, error) {
		diag.Status = dynamo.Diverged
		diag.Success = false
		diag.Evaluations = sys.n
		diag.Message = reason.Error()
		return tr, diag, &dynamo.SimulationError{Step: diag.Steps, Time: t, State: x.Clone(), Wrapped: reason}
	}

	for diag.Status == dynamo.Integrating {
		select {
		case <-ctx.Done():
			diag.Evaluations = sys.n
			diag.Message = "canceled"
			return tr, diag, ctx.Err()
		default:
		}

		remaining := span.TEnd - t
		if remaining <= 0 {
			diag.Status = dynamo.Terminated
			break
		}
		if diag.Steps >= cfg.MaxSteps {
			return diverge(fmt.Errorf("%w: step budget of %d exhausted at t=%g", dynamo.ErrDiverged, cfg.MaxSteps, t))
		}

		h = math.Min(h, cfg.MaxStep)
		last := h >= remaining
		if last {
			h = remaining
		}

		var xNew dynamo.State
		hNext := h
		if adaptive {
			var errNorm float64
			xNew, errNorm = embedded.Try(sys, x, t, h, cfg.ATol, cfg.RTol)
			if errNorm > 1 {
				diag.Rejected++
				if h <= cfg.MinStep {
					return diverge(fmt.Errorf("%w: %w (h=%g)", dynamo.ErrDiverged, dynamo.ErrStepTooSmall, h))
				}
				h = math.Max(cfg.MinStep, embedded.NextStep(h, errNorm))
				continue
			}
			hNext = embedded.NextStep(h, errNorm)
		} else {
			xNew = stepper.Step(sys, x, nil, t, h)
		}

		tNew := t + h
		if last {
			tNew = span.TEnd
		}
		diag.Steps++

		if !xNew.IsValid() {
			return diverge(fmt.Errorf("%w: %w", dynamo.ErrDiverged, dynamo.ErrInvalidState))
		}
		if xNew.MaxAbs() > cfg.StateBound {
			return diverge(fmt.Errorf("%w: state magnitude %g exceeds bound %g", dynamo.ErrDiverged, xNew.MaxAbs(), cfg.StateBound))
		}

		if event != nil {
			g := event(tNew, xNew)
			if crossed(gPrev, g) {
				diag.Status = dynamo.EventBracketed
				tEv, xEv := locate(stepper, sys, event, t, x, gPrev, tNew, xNew, cfg.EventTol)
				tr.Append(tEv, xEv)
				diag.EventFired = true
				diag.EventTime = tEv
				diag.Status = dynamo.Terminated
				break
			}
			if g != 0 {
				gPrev = g
			}
		}

		t, x = tNew, xNew
		tr.Append(t, x)
		h = hNext
	}

	diag.Evaluations = sys.n
	if event != nil && !diag.EventFired {
		diag.Success = false
		diag.Message = fmt.Sprintf("event not reached by t=%g", span.TEnd)
		return tr, diag, fmt.Errorf("%w: integrated to t=%g", dynamo.ErrEventNotReached, span.TEnd)
	}

	diag.Success = true
	if diag.EventFired {
		diag.Message = fmt.Sprintf("event at t=%g", diag.EventTime)
	} else {
		diag.Message = fmt.Sprintf("reached t=%g", span.TEnd)
	}
	return tr, diag, nil
}

// crossed reports a sign change from a non-zero previous value.
func crossed(prev, cur float64) bool {
	if prev == 0 {
		return false
	}
	return cur == 0 || (cur > 0) != (prev > 0)
}

// locate bisects [t0, t1] for the event root, re-stepping from the accepted
// state (t0, x0) so the located state carries the stepper's full order.
func locate(stepper dynamo.Stepper, dyn dynamo.System, event dynamo.EventFunc, t0 float64, x0 dynamo.State, g0, t1 float64, x1 dynamo.State, tol float64) (float64, dynamo.State) {
	if event(t1, x1) == 0 {
		return t1, x1
	}
	if tol <= 0 {
		tol = 1e-10
	}

	lo, hi := t0, t1
	xHi := x1
	for i := 0; i < maxBisections && hi-lo > tol; i++ {
		mid := 0.5 * (lo + hi)
		xMid := stepper.Step(dyn, x0, nil, t0, mid-t0)
		g := event(mid, xMid)
		if g == 0 {
			return mid, xMid
		}
		if (g > 0) == (g0 > 0) {
			lo = mid
		} else {
			hi, xHi = mid, xMid
		}
	}
	return hi, xHi
}
