package optim

import (
	"fmt"
	"math"
)

var (
	sqrtEps    = math.Sqrt(2.220446049250313e-16)
	goldenStep = 0.5 * (3 - math.Sqrt(5))
)

// MaximizeScalar finds the maximum of f on [lo, hi]. F in the result is
// f at X, not its negation.
func MaximizeScalar(f func(float64) float64, lo, hi float64, s Settings) (Result, error) {
	res, err := MinimizeScalar(func(x float64) float64 { return -f(x) }, lo, hi, s)
	res.F = -res.F
	return res, err
}

// MinimizeScalar is Brent's bounded method: golden-section steps with
// parabolic interpolation when the last few points allow it. It stops when
// the bracket around the best point is within XTol, or after MaxIter
// iterations with Converged false. Each iteration evaluates f once, after
// one evaluation at the starting point.
func MinimizeScalar(f func(float64) float64, lo, hi float64, s Settings) (Result, error) {
	s = s.withDefaults()
	if !(Bound{Lo: lo, Hi: hi}).valid() {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrBounds, lo, hi)
	}

	evals := 0
	eval := func(x float64) float64 {
		evals++
		return finite(f(x))
	}

	if lo == hi {
		flo := eval(lo)
		return Result{X: []float64{lo}, F: flo, Converged: true, Evaluations: evals, Message: "degenerate interval"}, nil
	}

	a, b := lo, hi
	// x is the best point so far, w the second best and v the previous w.
	x := a + goldenStep*(b-a)
	w, v := x, x
	fx := eval(x)
	fw, fv := fx, fx

	var d, e float64
	mid := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(x) + s.XTol/3
	tol2 := 2 * tol1

	iter := 0
	for math.Abs(x-mid) > tol2-0.5*(b-a) {
		if iter >= s.MaxIter {
			return Result{
				X: []float64{x}, F: fx, Evaluations: evals, Iterations: iter,
				Message: fmt.Sprintf("iteration limit %d reached (bracket width %g)", s.MaxIter, b-a),
			}, nil
		}
		iter++

		golden := true
		if math.Abs(e) > tol1 {
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			prev := e
			e = d

			if math.Abs(p) < math.Abs(0.5*q*prev) && p > q*(a-x) && p < q*(b-x) {
				golden = false
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = tol1 * signOf(mid-x)
				}
			}
		}
		if golden {
			if x >= mid {
				e = a - x
			} else {
				e = b - x
			}
			d = goldenStep * e
		}

		u := x + signOf(d)*math.Max(math.Abs(d), tol1)
		fu := eval(u)

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			switch {
			case fu <= fw || w == x:
				v, fv = w, fw
				w, fw = u, fu
			case fu <= fv || v == x || v == w:
				v, fv = u, fu
			}
		}

		mid = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(x) + s.XTol/3
		tol2 = 2 * tol1
		s.report(iter, evals, []float64{x}, fx)
	}

	return Result{
		X: []float64{x}, F: fx, Converged: true, Evaluations: evals, Iterations: iter,
		Message: fmt.Sprintf("converged to within %g", s.XTol),
	}, nil
}

// signOf returns -1 for negative v and 1 otherwise.
func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
