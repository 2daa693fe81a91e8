package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/logging"
	"github.com/san-kum/webswing/internal/optim"
	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/vecmath"
)

// Default search domains.
const (
	DefaultReleaseLo = 6.0
	DefaultReleaseHi = 12.0
)

// DefaultLaunchBounds bounds (release [s], speed [m/s], angle [rad]).
func DefaultLaunchBounds() []optim.Bound {
	return []optim.Bound{
		{Lo: 0, Hi: 20},
		{Lo: 0, Hi: 20},
		{Lo: -math.Pi, Hi: math.Pi},
	}
}

// DefaultLaunchGridPoints is the per-variable grid size used to seed the
// launch search when LaunchOptions leaves GridPoints at zero.
const DefaultLaunchGridPoints = 7

// DefaultLaunchGuess starts the launch search at 8 s with 10 m/s pointing
// down and back, away from the speed = 0 bound where the angle has no effect.
func DefaultLaunchGuess() []float64 {
	return []float64{8, 10, -2 * math.Pi / 3}
}

// Outcome is the best swing found by a search.
type Outcome struct {
	Release   float64
	Speed     float64
	Angle     float64
	Range     float64
	Optimizer optim.Result
	Run       *sim.Result
	Failures  int
}

func (o *Outcome) Launch() vecmath.Vector {
	return vecmath.FromPolar(o.Angle, o.Speed)
}

// OptimizeRelease searches [lo, hi] for the release time giving the
// longest range with zero launch velocity.
func OptimizeRelease(ctx context.Context, s *sim.Simulator, lo, hi float64, settings optim.Settings) (*Outcome, error) {
	log := logging.FromContext(ctx)
	obj := NewObjective(s)
	settings.Progress = progressLogger(log, "release", settings.Progress)

	res, err := optim.MaximizeScalar(obj.Release(ctx), lo, hi, settings)
	if err != nil {
		return nil, fmt.Errorf("optimize release: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !res.Converged {
		log.Warn("release search did not converge", "message", res.Message, "best", res.X[0])
	}

	out := &Outcome{Release: res.X[0], Range: res.F, Optimizer: res, Failures: obj.Failures()}
	if err := out.rerun(ctx, s); err != nil {
		return out, err
	}
	log.Info("release search done", "release", out.Release, "range", out.Range, "evaluations", res.Evaluations)
	return out, nil
}

// LaunchOptions tunes OptimizeLaunch.
type LaunchOptions struct {
	Settings optim.Settings
	// GridPoints > 1 seeds the search with the best point of a coarse grid
	// of that many values per variable. Zero means DefaultLaunchGridPoints;
	// a negative value or 1 starts from the guess alone.
	GridPoints int
}

// OptimizeLaunch searches release time, launch speed and launch angle
// together inside bounds, starting from guess.
func OptimizeLaunch(ctx context.Context, s *sim.Simulator, guess []float64, bounds []optim.Bound, opts LaunchOptions) (*Outcome, error) {
	log := logging.FromContext(ctx)
	if guess == nil {
		guess = DefaultLaunchGuess()
	}
	if bounds == nil {
		bounds = DefaultLaunchBounds()
	}
	if len(guess) != 3 || len(bounds) != 3 {
		return nil, fmt.Errorf("optimize launch: %w: want 3 variables, got guess %d bounds %d", optim.ErrBounds, len(guess), len(bounds))
	}

	obj := NewObjective(s)
	f := obj.Launch(ctx)

	x0 := optim.Project(append([]float64(nil), guess...), bounds)
	points := opts.GridPoints
	if points == 0 {
		points = DefaultLaunchGridPoints
	}
	if points > 1 {
		seed, err := gridSeed(ctx, f, bounds, points)
		if err != nil {
			return nil, fmt.Errorf("optimize launch: %w", err)
		}
		if seed.F < f(x0) {
			log.Debug("grid seed replaces guess", "seed", seed.X, "range", -seed.F)
			x0 = seed.X
		}
	}

	settings := opts.Settings
	if settings.InitialStep <= 0 {
		settings.InitialStep = 0.5
	}
	settings.Progress = progressLogger(log, "launch", settings.Progress)

	res, err := optim.MinimizeBounded(f, x0, bounds, settings)
	if err != nil {
		return nil, fmt.Errorf("optimize launch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !res.Converged {
		log.Warn("launch search did not converge", "message", res.Message)
	}

	out := &Outcome{
		Release:   res.X[0],
		Speed:     res.X[1],
		Angle:     res.X[2],
		Range:     -res.F,
		Optimizer: res,
		Failures:  obj.Failures(),
	}
	if err := out.rerun(ctx, s); err != nil {
		return out, err
	}
	log.Info("launch search done", "release", out.Release, "speed", out.Speed, "angle", out.Angle, "range", out.Range, "evaluations", res.Evaluations)
	return out, nil
}

func gridSeed(ctx context.Context, f func([]float64) float64, bounds []optim.Bound, points int) (optim.Result, error) {
	names := []string{"release", "speed", "angle"}
	ranges := make([][]float64, len(bounds))
	for i, b := range bounds {
		ranges[i] = optim.Linspace(b.Lo, b.Hi, points)
	}
	return optim.NewGridSearch(names, ranges).Search(ctx, f)
}

// rerun replays the best point to keep its trajectory.
func (o *Outcome) rerun(ctx context.Context, s *sim.Simulator) error {
	res, err := s.Run(ctx, o.Release, o.Launch())
	o.Run = res
	if err != nil {
		return fmt.Errorf("best point: %w", err)
	}
	return nil
}

func progressLogger(log *logging.Logger, search string, next func(optim.Progress)) func(optim.Progress) {
	return func(p optim.Progress) {
		log.Debug("optimizer progress", "search", search, "iteration", p.Iteration, "evaluations", p.Evaluations, "x", p.X, "f", p.F)
		if next != nil {
			next(p)
		}
	}
}

// SweepRow is the range for one release time.
type SweepRow struct {
	Release float64
	Range   float64
	Landed  bool
	Err     error
}

// SweepRelease evaluates each release time with zero launch velocity,
// spreading the runs over GOMAXPROCS goroutines. Rows keep input order.
func SweepRelease(ctx context.Context, s *sim.Simulator, times []float64) []SweepRow {
	rows := make([]SweepRow, len(times))
	dynamo.ParallelFor(len(times), 1, func(start, end int) {
		for i := start; i < end; i++ {
			row := SweepRow{Release: times[i]}
			res, err := s.Run(ctx, times[i], vecmath.Zero)
			if res != nil {
				row.Range = res.Range
				row.Landed = res.Landed
			}
			row.Err = err
			rows[i] = row
		}
	})
	return rows
}
