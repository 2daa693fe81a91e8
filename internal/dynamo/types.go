package dynamo

import (
	"fmt"
	"math"
)

// State is the integration variable. For the swing model it is (x, y, vx, vy).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute component.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Lerp returns s + alpha*(other-s).
func (s State) Lerp(other State, alpha float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + alpha*(other[i]-s[i])
	}
	return result
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
}

// Hamiltonian is implemented by systems that can report mechanical energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Stepper advances a state by one fixed step.
type Stepper interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// EmbeddedStepper is a stepper with an embedded error estimate. Try returns
// the candidate state after a step of size h and the error norm scaled by
// atol + rtol*|x|; a norm <= 1 means the step is acceptable. NextStep
// proposes the following step size from that norm.
type EmbeddedStepper interface {
	Stepper
	Try(dyn System, x State, t, h, atol, rtol float64) (State, float64)
	NextStep(h, errNorm float64) float64
}

// EventFunc is a scalar function of state whose zero crossing terminates
// an integration.
type EventFunc func(t float64, x State) float64

// Span is an integration interval [T0, TEnd].
type Span struct {
	T0, TEnd float64
}

func (s Span) Duration() float64 { return s.TEnd - s.T0 }

// Config bounds a solver run.
type Config struct {
	MaxStep    float64
	MinStep    float64
	InitStep   float64
	ATol       float64
	RTol       float64
	MaxSteps   int
	StateBound float64
	EventTol   float64
}

func DefaultConfig() Config {
	return Config{
		MaxStep:    0.1,
		MinStep:    1e-10,
		ATol:       1e-6,
		RTol:       1e-6,
		MaxSteps:   100000,
		StateBound: 1e9,
		EventTol:   1e-10,
	}
}

// Validate checks that every bound is usable.
func (c Config) Validate() error {
	if c.MaxStep <= 0 {
		return fmt.Errorf("%w: max step must be positive, got %g", ErrParameterBounds, c.MaxStep)
	}
	if c.MinStep <= 0 || c.MinStep > c.MaxStep {
		return fmt.Errorf("%w: min step must be in (0, max step], got %g", ErrParameterBounds, c.MinStep)
	}
	if c.ATol <= 0 || c.RTol < 0 {
		return fmt.Errorf("%w: tolerances must be positive (atol=%g rtol=%g)", ErrParameterBounds, c.ATol, c.RTol)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrParameterBounds, c.MaxSteps)
	}
	if c.StateBound <= 0 {
		return fmt.Errorf("%w: state bound must be positive, got %g", ErrParameterBounds, c.StateBound)
	}
	return nil
}

// Status is the solver state machine position.
type Status int

const (
	Integrating Status = iota
	EventBracketed
	Terminated
	Diverged
)

func (s Status) String() string {
	switch s {
	case Integrating:
		return "integrating"
	case EventBracketed:
		return "event-bracketed"
	case Terminated:
		return "terminated"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Diagnostics reports how a solver run ended.
type Diagnostics struct {
	Success     bool
	Status      Status
	Steps       int
	Rejected    int
	Evaluations int
	EventFired  bool
	EventTime   float64
	Message     string
}
