package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/webswing/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// freeFall is a point dropped from height: state (y, vy).
type freeFall struct{ g float64 }

func (f *freeFall) StateDim() int { return 2 }

func (f *freeFall) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -f.g}
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	x0 := dynamo.State{1.0, 0.0}
	NewRK4().Step(&harmonicOscillator{}, x0, nil, 0, 0.1)
	if x0[0] != 1.0 || x0[1] != 0.0 {
		t.Errorf("input state mutated: %v", x0)
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01
	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}
	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_ExactForQuadratics(t *testing.T) {
	x, errNorm := NewRK45().Try(&freeFall{g: 9.8}, dynamo.State{10, 0}, 0, 0.5, 1e-6, 1e-6)

	want := 10 - 0.5*9.8*0.25
	if math.Abs(x[0]-want) > 1e-12 {
		t.Errorf("y = %.15f, want %.15f", x[0], want)
	}
	if errNorm > 1e-6 {
		t.Errorf("error estimate %g should vanish for a quadratic solution", errNorm)
	}
}

func TestRK45_ErrorShrinksWithStep(t *testing.T) {
	r := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	_, coarse := r.Try(dyn, x0, 0, 0.5, 1e-9, 0)
	_, fine := r.Try(dyn, x0, 0, 0.05, 1e-9, 0)
	if !(fine < coarse) {
		t.Errorf("error norm did not shrink: h=0.5 gives %g, h=0.05 gives %g", coarse, fine)
	}
}

func TestRK45_NextStep(t *testing.T) {
	r := NewRK45()

	tests := []struct {
		name    string
		errNorm float64
		check   func(h float64) bool
	}{
		{"perfect step grows by max", 0, func(h float64) bool { return h == 1.0 }},
		{"small error grows", 1e-4, func(h float64) bool { return h > 0.1 && h <= 1.0 }},
		{"rejected shrinks", 4, func(h float64) bool { return h < 0.1 && h >= 0.02 }},
		{"huge error clamps", 1e12, func(h float64) bool { return math.Abs(h-0.02) < 1e-15 }},
		{"non-finite clamps", math.Inf(1), func(h float64) bool { return math.Abs(h-0.02) < 1e-15 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := r.NextStep(0.1, tt.errNorm); !tt.check(h) {
				t.Errorf("NextStep(0.1, %g) = %g", tt.errNorm, h)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if s == nil {
			t.Fatalf("New(%q) returned nil", name)
		}
	}

	if _, err := New("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	a, _ := New("rk4")
	b, _ := New("rk4")
	if a == b {
		t.Error("New must return a fresh stepper per call")
	}
}

func BenchmarkRK45Try(b *testing.B) {
	r := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Try(dyn, x, 0, 0.01, 1e-6, 1e-6)
	}
}

func BenchmarkRK4Step(b *testing.B) {
	r := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = r.Step(dyn, x, nil, 0, 0.01)
	}
}
