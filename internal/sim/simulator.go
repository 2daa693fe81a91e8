// Package sim runs the two-phase swing: a tethered swing up to the release
// time followed by free flight until the body reaches the ground.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/integrators"
	"github.com/san-kum/webswing/internal/logging"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/vecmath"
)

// DefaultFreeFlight is the free-flight window after release [s].
const DefaultFreeFlight = 20.0

// Simulator holds the base parameters shared by every run. Run never
// modifies it, so one Simulator may be used from several goroutines.
type Simulator struct {
	Params     physics.Params
	Solver     *integrators.Solver
	FreeFlight float64
}

func New(p physics.Params, solver *integrators.Solver) *Simulator {
	if solver == nil {
		solver = integrators.NewSolver("rk45", dynamo.DefaultConfig())
	}
	return &Simulator{
		Params:     p,
		Solver:     solver,
		FreeFlight: DefaultFreeFlight,
	}
}

// Run swings from the initial position with the given launch velocity,
// lets go at release and flies until ground contact. The result is returned
// alongside any error so callers can inspect partial trajectories.
func (s *Simulator) Run(ctx context.Context, release float64, launch vecmath.Vector) (*Result, error) {
	log := logging.FromContext(ctx)

	if math.IsNaN(release) || math.IsInf(release, 0) || release < 0 {
		return nil, fmt.Errorf("%w: release time must be finite and non-negative, got %g", dynamo.ErrParameterBounds, release)
	}
	if !launch.IsValid() {
		return nil, fmt.Errorf("%w: launch velocity is not finite", dynamo.ErrParameterBounds)
	}
	if !(s.FreeFlight > 0) {
		return nil, fmt.Errorf("%w: free flight window must be positive, got %g", dynamo.ErrParameterBounds, s.FreeFlight)
	}

	res := &Result{Release: release, Launch: launch}

	swing, err := s.swing(ctx, release, launch, res)
	if err != nil {
		return res, err
	}

	tRel, xRel, _ := swing.Last()
	pos := vecmath.New(xRel[0], xRel[1])
	vel := vecmath.New(xRel[2], xRel[3])

	flightParams := s.Params.With(physics.Overrides{
		T0:   physics.Ptr(tRel),
		TEnd: physics.Ptr(tRel + s.FreeFlight),
		K:    physics.Ptr(0.0),
		P0:   &pos,
		V0:   &vel,
	})
	flight, err := physics.NewSystemConfig(flightParams)
	if err != nil {
		return res, fmt.Errorf("flight phase: %w", err)
	}

	ftr, diag, err := s.Solver.Solve(ctx, flight, flight.Initial(), flight.Span(), Ground)
	res.Flight = diag
	res.Trajectory = swing.Splice(ftr)
	log.Debug("flight phase", "release", tRel, "steps", diag.Steps, "rejected", diag.Rejected, "status", diag.Status.String())

	if tEnd, xEnd, ok := res.Trajectory.Last(); ok {
		res.Range = xEnd[0]
		res.FlightTime = tEnd - tRel
	}
	res.Landed = diag.EventFired
	if err != nil {
		return res, fmt.Errorf("flight phase: %w", err)
	}
	return res, nil
}

// swing integrates phase 1 over [0, release]. A zero release skips the
// phase and returns the initial state as the hand-off sample.
func (s *Simulator) swing(ctx context.Context, release float64, launch vecmath.Vector, res *Result) (*dynamo.Trajectory, error) {
	if release == 0 {
		p := s.Params.With(physics.Overrides{
			T0:   physics.Ptr(0.0),
			TEnd: physics.Ptr(s.FreeFlight),
			V0:   &launch,
		})
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("swing phase: %w", err)
		}
		tr := dynamo.NewTrajectory(1)
		tr.Append(0, p.InitialState())
		res.Trajectory = tr
		res.Swing = dynamo.Diagnostics{Success: true, Status: dynamo.Terminated, Message: "skipped"}
		return tr, nil
	}

	p := s.Params.With(physics.Overrides{
		T0:   physics.Ptr(0.0),
		TEnd: physics.Ptr(release),
		V0:   &launch,
	})
	sys, err := physics.NewSystemConfig(p)
	if err != nil {
		return nil, fmt.Errorf("swing phase: %w", err)
	}

	tr, diag, err := s.Solver.Solve(ctx, sys, sys.Initial(), sys.Span(), nil)
	res.Swing = diag
	res.Trajectory = tr
	logging.FromContext(ctx).Debug("swing phase", "release", release, "steps", diag.Steps, "rejected", diag.Rejected, "status", diag.Status.String())
	if err != nil {
		return nil, fmt.Errorf("swing phase: %w", err)
	}
	return tr, nil
}

// Ground is the landing event: the height above ground.
func Ground(t float64, x dynamo.State) float64 {
	return x[1]
}
