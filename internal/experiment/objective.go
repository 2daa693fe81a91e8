// Package experiment turns the two-phase simulator into objectives and runs
// the searches over release time and launch velocity.
package experiment

import (
	"context"
	"sync/atomic"

	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/vecmath"
)

// DefaultPenalty is the objective value given to runs that diverge or
// never land.
const DefaultPenalty = 1e6

// Evaluation is one objective call as seen by an Objective observer.
type Evaluation struct {
	Release float64
	Launch  vecmath.Vector
	Range   float64
	Valid   bool
	Err     error
}

// Objective evaluates the range of a swing. It holds no state beyond its
// counters, so it may be called from several goroutines.
type Objective struct {
	sim     *sim.Simulator
	Penalty float64
	// Observer, when set, sees every evaluation.
	Observer func(Evaluation)

	calls    atomic.Int64
	failures atomic.Int64
}

func NewObjective(s *sim.Simulator) *Objective {
	return &Objective{sim: s, Penalty: DefaultPenalty}
}

// Range runs the simulator and returns the landing x. ok is false when the
// run failed, in which case range is -Penalty.
func (o *Objective) Range(ctx context.Context, release float64, launch vecmath.Vector) (float64, bool) {
	o.calls.Add(1)
	res, err := o.sim.Run(ctx, release, launch)

	ev := Evaluation{Release: release, Launch: launch, Err: err}
	if err != nil || !res.Valid() {
		o.failures.Add(1)
		ev.Range = -o.Penalty
	} else {
		ev.Range = res.Range
		ev.Valid = true
	}
	if o.Observer != nil {
		o.Observer(ev)
	}
	return ev.Range, ev.Valid
}

// Release is the range as a function of release time with zero launch
// velocity, for maximization. Runs stop when ctx is done.
func (o *Objective) Release(ctx context.Context) func(float64) float64 {
	return func(t float64) float64 {
		r, _ := o.Range(ctx, t, vecmath.Zero)
		return r
	}
}

// Launch is the negated range as a function of (release, speed, angle),
// for minimization. Runs stop when ctx is done.
func (o *Objective) Launch(ctx context.Context) func([]float64) float64 {
	return func(x []float64) float64 {
		r, _ := o.Range(ctx, x[0], vecmath.FromPolar(x[2], x[1]))
		return -r
	}
}

func (o *Objective) Calls() int { return int(o.calls.Load()) }

// Failures is the number of evaluations that received the penalty.
func (o *Objective) Failures() int { return int(o.failures.Load()) }

// ReleaseObjective returns the release-time objective of s.
func ReleaseObjective(s *sim.Simulator) func(float64) float64 {
	return NewObjective(s).Release(context.Background())
}

// LaunchObjective returns the negated (release, speed, angle) objective of s.
func LaunchObjective(s *sim.Simulator) func([]float64) float64 {
	return NewObjective(s).Launch(context.Background())
}
