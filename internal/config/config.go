package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/integrators"
	"github.com/san-kum/webswing/internal/optim"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/sim"
)

// Config is the YAML form of a swing setup. Angles are in degrees here and
// radians everywhere else.
type Config struct {
	Params     ParamsConfig    `yaml:"params"`
	Solver     SolverConfig    `yaml:"solver"`
	FreeFlight float64         `yaml:"free_flight"`
	Release    RangeConfig     `yaml:"release"`
	Launch     LaunchConfig    `yaml:"launch"`
	Optimizer  OptimizerConfig `yaml:"optimizer"`
}

type ParamsConfig struct {
	Height   float64 `yaml:"height"`
	Gravity  float64 `yaml:"gravity"`
	Mass     float64 `yaml:"mass"`
	Area     float64 `yaml:"area"`
	Rho      float64 `yaml:"rho"`
	VTerm    float64 `yaml:"v_term"`
	Length   float64 `yaml:"length"`
	AngleDeg float64 `yaml:"angle_deg"`
	K        float64 `yaml:"k"`
	T0       float64 `yaml:"t0"`
	TEnd     float64 `yaml:"t_end"`
}

type SolverConfig struct {
	Method   string  `yaml:"method"`
	MaxStep  float64 `yaml:"max_step"`
	MinStep  float64 `yaml:"min_step"`
	ATol     float64 `yaml:"atol"`
	RTol     float64 `yaml:"rtol"`
	MaxSteps int     `yaml:"max_steps"`
}

// RangeConfig is a closed interval.
type RangeConfig struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

type LaunchConfig struct {
	Release  RangeConfig `yaml:"release"`
	Speed    RangeConfig `yaml:"speed"`
	AngleDeg RangeConfig `yaml:"angle_deg"`
	// Guess is (release [s], speed [m/s], angle [deg]).
	Guess      []float64 `yaml:"guess"`
	GridPoints int       `yaml:"grid_points"`
}

type OptimizerConfig struct {
	XTol    float64 `yaml:"xtol"`
	FTol    float64 `yaml:"ftol"`
	MaxIter int     `yaml:"max_iter"`
	MaxEval int     `yaml:"max_eval"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	solver := dynamo.DefaultConfig()
	opt := optim.DefaultSettings()
	return &Config{
		Params: ParamsConfig{
			Height:   p.Height,
			Gravity:  p.Gravity,
			Mass:     p.Mass,
			Area:     p.Area,
			Rho:      p.Rho,
			VTerm:    p.TerminalVelocity,
			Length:   p.Length,
			AngleDeg: 225,
			K:        p.K,
			T0:       p.T0,
			TEnd:     p.TEnd,
		},
		Solver: SolverConfig{
			Method:   "rk45",
			MaxStep:  solver.MaxStep,
			MinStep:  solver.MinStep,
			ATol:     solver.ATol,
			RTol:     solver.RTol,
			MaxSteps: solver.MaxSteps,
		},
		FreeFlight: sim.DefaultFreeFlight,
		Release:    RangeConfig{Lo: 6, Hi: 12},
		Launch: LaunchConfig{
			Release:    RangeConfig{Lo: 0, Hi: 20},
			Speed:      RangeConfig{Lo: 0, Hi: 20},
			AngleDeg:   RangeConfig{Lo: -180, Hi: 180},
			Guess:      []float64{8, 10, -120},
			GridPoints: 7,
		},
		Optimizer: OptimizerConfig{
			XTol:    opt.XTol,
			FTol:    opt.FTol,
			MaxIter: opt.MaxIter,
			MaxEval: opt.MaxEval,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the
// fields it changes.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over base, which is modified and returned.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{
		Height:           c.Params.Height,
		Gravity:          c.Params.Gravity,
		Mass:             c.Params.Mass,
		Area:             c.Params.Area,
		Rho:              c.Params.Rho,
		TerminalVelocity: c.Params.VTerm,
		Length:           c.Params.Length,
		Angle:            c.Params.AngleDeg * math.Pi / 180,
		K:                c.Params.K,
		T0:               c.Params.T0,
		TEnd:             c.Params.TEnd,
	}
}

// SolverSettings returns the integrator bounds, keeping library defaults
// for anything the YAML leaves unset.
func (c *Config) SolverSettings() dynamo.Config {
	d := dynamo.DefaultConfig()
	if c.Solver.MaxStep > 0 {
		d.MaxStep = c.Solver.MaxStep
	}
	if c.Solver.MinStep > 0 {
		d.MinStep = c.Solver.MinStep
	}
	if c.Solver.ATol > 0 {
		d.ATol = c.Solver.ATol
	}
	if c.Solver.RTol > 0 {
		d.RTol = c.Solver.RTol
	}
	if c.Solver.MaxSteps > 0 {
		d.MaxSteps = c.Solver.MaxSteps
	}
	return d
}

func (c *Config) Simulator() (*sim.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	method := c.Solver.Method
	if method == "" {
		method = "rk45"
	}
	s := sim.New(c.PhysicsParams(), integrators.NewSolver(method, c.SolverSettings()))
	if c.FreeFlight > 0 {
		s.FreeFlight = c.FreeFlight
	}
	return s, nil
}

func (c *Config) OptimSettings() optim.Settings {
	return optim.Settings{
		XTol:    c.Optimizer.XTol,
		FTol:    c.Optimizer.FTol,
		MaxIter: c.Optimizer.MaxIter,
		MaxEval: c.Optimizer.MaxEval,
	}
}

// LaunchBounds returns (release, speed, angle) bounds with the angle in
// radians.
func (c *Config) LaunchBounds() []optim.Bound {
	deg := math.Pi / 180
	return []optim.Bound{
		{Lo: c.Launch.Release.Lo, Hi: c.Launch.Release.Hi},
		{Lo: c.Launch.Speed.Lo, Hi: c.Launch.Speed.Hi},
		{Lo: c.Launch.AngleDeg.Lo * deg, Hi: c.Launch.AngleDeg.Hi * deg},
	}
}

// LaunchGuess returns the starting point with the angle in radians, or nil
// when the YAML has no usable guess.
func (c *Config) LaunchGuess() []float64 {
	if len(c.Launch.Guess) != 3 {
		return nil
	}
	return []float64{c.Launch.Guess[0], c.Launch.Guess[1], c.Launch.Guess[2] * math.Pi / 180}
}

func (c *Config) Validate() error {
	if err := c.PhysicsParams().Validate(); err != nil {
		return err
	}
	if c.Solver.Method != "" {
		if _, err := integrators.New(c.Solver.Method); err != nil {
			return err
		}
	}
	if err := c.SolverSettings().Validate(); err != nil {
		return err
	}
	if c.FreeFlight < 0 {
		return fmt.Errorf("%w: free_flight must be positive, got %g", dynamo.ErrParameterBounds, c.FreeFlight)
	}
	if c.Release.Lo > c.Release.Hi {
		return fmt.Errorf("%w: release bounds [%g, %g]", dynamo.ErrParameterBounds, c.Release.Lo, c.Release.Hi)
	}
	for _, b := range c.LaunchBounds() {
		if b.Lo > b.Hi {
			return fmt.Errorf("%w: launch bounds [%g, %g]", dynamo.ErrParameterBounds, b.Lo, b.Hi)
		}
	}
	if g := c.Launch.Guess; g != nil && len(g) != 3 {
		return fmt.Errorf("%w: launch guess needs 3 values, got %d", dynamo.ErrParameterBounds, len(g))
	}
	return nil
}
