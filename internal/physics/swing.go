package physics

import (
	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/vecmath"
)

// SystemConfig is the per-phase snapshot handed to the integrator. It is
// built once from Params and never changes; a new phase needs a new one.
type SystemConfig struct {
	initial dynamo.State
	anchor  vecmath.Vector
	gravity float64
	mass    float64
	rho     float64
	cd      float64
	area    float64
	length  float64
	k       float64
	span    dynamo.Span
}

func NewSystemConfig(p Params) (*SystemConfig, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &SystemConfig{
		initial: p.InitialState(),
		anchor:  p.Anchor(),
		gravity: p.Gravity,
		mass:    p.Mass,
		rho:     p.Rho,
		cd:      p.DragCoefficient(),
		area:    p.Area,
		length:  p.Length,
		k:       p.K,
		span:    dynamo.Span{T0: p.T0, TEnd: p.TEnd},
	}, nil
}

func (s *SystemConfig) StateDim() int { return 4 }

// Initial returns a copy of the initial state.
func (s *SystemConfig) Initial() dynamo.State { return s.initial.Clone() }

func (s *SystemConfig) Span() dynamo.Span { return s.span }

func (s *SystemConfig) K() float64 { return s.k }

// Tether returns the vector from the anchor to position (x, y).
func (s *SystemConfig) Tether(x, y float64) vecmath.Vector {
	return vecmath.New(x, y).Sub(s.anchor)
}

// Acceleration returns the net acceleration at position pos moving with
// velocity vel.
func (s *SystemConfig) Acceleration(pos, vel vecmath.Vector) vecmath.Vector {
	f := Gravity(s.mass, s.gravity).
		Add(Spring(pos.Sub(s.anchor), s.length, s.k)).
		Add(Drag(vel, s.rho, s.cd, s.area))
	return f.Scale(1 / s.mass)
}

// Derive returns (vx, vy, ax, ay). The system is time-invariant and takes
// no control input.
func (s *SystemConfig) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	a := s.Acceleration(vecmath.New(x[0], x[1]), vecmath.New(x[2], x[3]))
	return dynamo.State{x[2], x[3], a.X, a.Y}
}

// Energy returns kinetic, gravitational and elastic energy, with ground
// level as the gravitational zero.
func (s *SystemConfig) Energy(x dynamo.State) float64 {
	ke := 0.5 * s.mass * (x[2]*x[2] + x[3]*x[3])
	pe := s.mass * s.gravity * x[1]
	ext := s.Tether(x[0], x[1]).Norm() - s.length
	if ext > 0 && s.k > 0 {
		pe += 0.5 * s.k * ext * ext
	}
	return ke + pe
}

// TensionAt returns the tether tension at state x.
func (s *SystemConfig) TensionAt(x dynamo.State) float64 {
	return Tension(s.Tether(x[0], x[1]), s.length, s.k)
}
