package integrators

import (
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

var (
	dpNodes   = [5]float64{a2, a3, a4, a5, 1}
	dpStages  = [5][]float64{{b21}, {b31, b32}, {b41, b42, b43}, {b51, b52, b53, b54}, {b61, b62, b63, b64, b65}}
	dpWeights = [6]float64{c1, 0, c3, c4, c5, c6}
	dpError   = [7]float64{dc1, 0, dc3, dc4, dc5, dc6, dc7}
)

// RK45 is the Dormand-Prince 5(4) embedded pair.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fifth-order step of size dt without error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	xNew, _ := r.Try(dyn, x, t, dt, 1, 0)
	return xNew
}

// Try takes a step of size h and returns the fifth-order solution together
// with the RMS of the embedded error estimate scaled by atol + rtol*|x|.
func (r *RK45) Try(dyn dynamo.System, x dynamo.State, t, h, atol, rtol float64) (dynamo.State, float64) {
	n := len(x)
	var k [7]dynamo.State

	k[0] = dyn.Derive(x, nil, t)

	xi := make(dynamo.State, n)
	for i, row := range dpStages {
		copy(xi, x)
		for j, b := range row {
			floats.AddScaled(xi, h*b, k[j])
		}
		k[i+1] = dyn.Derive(xi, nil, t+dpNodes[i]*h)
	}

	xNew := x.Clone()
	for j, c := range dpWeights {
		if c != 0 {
			floats.AddScaled(xNew, h*c, k[j])
		}
	}

	k[6] = dyn.Derive(xNew, nil, t+h)

	errEst := make([]float64, n)
	for j, dc := range dpError {
		if dc != 0 {
			floats.AddScaled(errEst, h*dc, k[j])
		}
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst[i] / scale
		sum += e * e
	}
	errNorm := math.Sqrt(sum / float64(n))
	if math.IsNaN(errNorm) {
		errNorm = math.Inf(1)
	}

	return xNew, errNorm
}

// NextStep proposes the step size following a step of size h whose scaled
// error was errNorm.
func (r *RK45) NextStep(h, errNorm float64) float64 {
	if errNorm > 1 {
		if math.IsInf(errNorm, 1) {
			return h * r.minScale
		}
		return h * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	}
	if errNorm == 0 {
		return h * r.maxScale
	}
	return h * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
}
