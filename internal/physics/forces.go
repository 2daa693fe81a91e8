package physics

import "github.com/san-kum/webswing/internal/vecmath"

// Gravity returns the weight of mass m.
func Gravity(mass, g float64) vecmath.Vector {
	return vecmath.New(0, -mass*g)
}

// Drag returns quadratic air drag opposing v. A body at rest feels none.
func Drag(v vecmath.Vector, rho, cd, area float64) vecmath.Vector {
	dir, err := v.Hat()
	if err != nil {
		return vecmath.Zero
	}
	speed := v.Norm()
	mag := rho * speed * speed * cd * area / 2
	return dir.Scale(-mag)
}

// Tension returns the magnitude of the tether force for a tether spanning
// the vector from anchor to body. A slack or relaxed tether carries none.
func Tension(tether vecmath.Vector, length, k float64) float64 {
	ext := tether.Norm() - length
	if ext <= 0 || k == 0 {
		return 0
	}
	return k * ext
}

// Spring returns the one-sided tether force on the body, pulling it back
// toward the anchor. tether points from the anchor to the body.
func Spring(tether vecmath.Vector, length, k float64) vecmath.Vector {
	mag := Tension(tether, length, k)
	if mag == 0 {
		return vecmath.Zero
	}
	dir, err := tether.Hat()
	if err != nil {
		return vecmath.Zero
	}
	return dir.Scale(-mag)
}
