package integrators

import (
	"github.com/san-kum/webswing/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classic fixed-step fourth-order Runge-Kutta method. It keeps
// scratch buffers and must not be shared between goroutines.
type RK4 struct {
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t)

	floats.AddScaledTo(r.scratch, x, dt*0.5, k1)
	k2 := dyn.Derive(r.scratch, u, t+dt*0.5)

	floats.AddScaledTo(r.scratch, x, dt*0.5, k2)
	k3 := dyn.Derive(r.scratch, u, t+dt*0.5)

	floats.AddScaledTo(r.scratch, x, dt, k3)
	k4 := dyn.Derive(r.scratch, u, t+dt)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return result
}
