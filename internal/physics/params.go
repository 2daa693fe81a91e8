package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/vecmath"
)

// Params is the physical description of one swing. All fields are SI:
// metres, seconds, kilograms, radians. A Params value is never modified in
// place; use With to derive per-phase variants.
type Params struct {
	Height           float64 // anchor height above ground [m]
	Gravity          float64 // [m/s^2]
	Mass             float64 // [kg]
	Area             float64 // reference cross-section [m^2]
	Rho              float64 // air density [kg/m^3]
	TerminalVelocity float64 // [m/s], calibrates the drag coefficient
	Length           float64 // natural tether length [m]
	Angle            float64 // initial tether angle about the anchor [rad]
	K                float64 // tether spring constant [N/m]
	T0               float64 // [s]
	TEnd             float64 // [s]

	// P0 overrides the initial position derived from Length and Angle.
	P0 *vecmath.Vector
	// V0 is the initial velocity [m/s].
	V0 vecmath.Vector
}

// DefaultParams returns the reference scenario: a 75 kg body on a 100 m
// web anchored 381 m up, starting at 225 degrees.
func DefaultParams() Params {
	return Params{
		Height:           381,
		Gravity:          9.8,
		Mass:             75,
		Area:             1,
		Rho:              1.2,
		TerminalVelocity: 60,
		Length:           100,
		Angle:            225 * math.Pi / 180,
		K:                40,
		T0:               0,
		TEnd:             30,
	}
}

// DragCoefficient derives Cd from the terminal velocity: at terminal speed
// drag balances weight, so Cd = 2*m*g / (rho*A*v_term^2).
func (p Params) DragCoefficient() float64 {
	return 2 * p.Mass * p.Gravity / (p.Rho * p.Area * p.TerminalVelocity * p.TerminalVelocity)
}

// Anchor returns the tether attachment point.
func (p Params) Anchor() vecmath.Vector {
	return vecmath.New(0, p.Height)
}

// InitialPosition returns P0 when set, otherwise the point at the natural
// tether length along Angle from the anchor.
func (p Params) InitialPosition() vecmath.Vector {
	if p.P0 != nil {
		return *p.P0
	}
	return p.Anchor().Add(vecmath.FromPolar(p.Angle, p.Length))
}

// InitialState returns (x, y, vx, vy) at T0.
func (p Params) InitialState() dynamo.State {
	pos := p.InitialPosition()
	return dynamo.State{pos.X, pos.Y, p.V0.X, p.V0.Y}
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"gravity", p.Gravity},
		{"mass", p.Mass},
		{"area", p.Area},
		{"rho", p.Rho},
		{"terminal velocity", p.TerminalVelocity},
		{"length", p.Length},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameterBounds, f.name, f.v)
		}
	}
	if p.K < 0 {
		return fmt.Errorf("%w: spring constant must be non-negative, got %g", dynamo.ErrParameterBounds, p.K)
	}
	if !(p.TEnd > p.T0) {
		return fmt.Errorf("%w: t_end (%g) must be after t0 (%g)", dynamo.ErrParameterBounds, p.TEnd, p.T0)
	}
	if p.P0 != nil && !p.P0.IsValid() {
		return fmt.Errorf("%w: initial position is not finite", dynamo.ErrParameterBounds)
	}
	if !p.V0.IsValid() {
		return fmt.Errorf("%w: initial velocity is not finite", dynamo.ErrParameterBounds)
	}
	return nil
}

// Overrides lists the fields replaced when deriving a phase. Nil fields
// keep the base value.
type Overrides struct {
	T0   *float64
	TEnd *float64
	K    *float64
	P0   *vecmath.Vector
	V0   *vecmath.Vector
}

// With returns a copy of p with the given overrides applied.
func (p Params) With(o Overrides) Params {
	out := p
	if p.P0 != nil {
		p0 := *p.P0
		out.P0 = &p0
	}
	if o.T0 != nil {
		out.T0 = *o.T0
	}
	if o.TEnd != nil {
		out.TEnd = *o.TEnd
	}
	if o.K != nil {
		out.K = *o.K
	}
	if o.P0 != nil {
		p0 := *o.P0
		out.P0 = &p0
	}
	if o.V0 != nil {
		out.V0 = *o.V0
	}
	return out
}

// Ptr returns a pointer to v, for building Overrides literals.
func Ptr[T any](v T) *T { return &v }
