package sim

import (
	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/vecmath"
)

// Result is one two-phase run.
type Result struct {
	Release    float64
	Launch     vecmath.Vector
	Trajectory *dynamo.Trajectory
	Swing      dynamo.Diagnostics
	Flight     dynamo.Diagnostics
	Landed     bool
	Range      float64 // final horizontal position [m]
	FlightTime float64 // time from release to landing [s]
}

// Valid reports whether both phases succeeded and the body landed.
func (r *Result) Valid() bool {
	return r != nil && r.Swing.Success && r.Flight.Success && r.Landed
}

// ReleaseState returns the hand-off sample between the two phases.
func (r *Result) ReleaseState() (float64, dynamo.State, bool) {
	if r == nil || r.Trajectory == nil {
		return 0, nil, false
	}
	for i, t := range r.Trajectory.Times {
		if t >= r.Release {
			return t, r.Trajectory.States[i], true
		}
	}
	return 0, nil, false
}

// Steps returns the accepted step count over both phases.
func (r *Result) Steps() int {
	return r.Swing.Steps + r.Flight.Steps
}
