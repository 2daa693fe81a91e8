// Package physics provides the force model and equations of motion of a
// body swinging on an elastic web.
//
// Three forces act on the body:
//
//   - [Gravity]: constant weight
//   - [Drag]: quadratic air drag, calibrated from a terminal velocity
//   - [Spring]: one-sided linear tether tension, zero while the web is slack
//
// [SystemConfig] implements [dynamo.System] for a single phase. Releasing
// the web is modelled by building a new SystemConfig with K set to zero:
//
//	released := params.With(physics.Overrides{K: physics.Ptr(0.0)})
//	sys, err := physics.NewSystemConfig(released)
//
// It also implements [dynamo.Hamiltonian], reporting mechanical energy so
// drag losses can be measured.
package physics
