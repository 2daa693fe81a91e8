// Package dynamo provides core simulation primitives for the web-swing
// simulator.
//
// The package defines the fundamental interfaces and types shared by the
// physics model, the integrators and the two-phase simulator:
//
//   - [State]: kinematic state vector (x, y, vx, vy)
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Stepper]: single-step numerical integrator interface
//   - [Trajectory]: time-ordered samples produced by one integration run
//   - [Diagnostics]: solver outcome reported alongside a trajectory
//
// # Errors
//
// Solver failures are reported as values, never panics. Divergence wraps
// [ErrDiverged] in a [SimulationError]; a terminal event that never fires
// wraps [ErrEventNotReached].
//
// # Thread Safety
//
// Systems built by the physics package are immutable and may be evaluated
// from several goroutines. Steppers keep scratch buffers and must not be
// shared; use [ParallelFor] with one stepper per worker.
package dynamo
