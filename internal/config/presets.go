package config

import "sort"

// Presets are named variations of the default setup.
var Presets = map[string]func(*Config){
	"reference": func(c *Config) {},
	"stiff-web": func(c *Config) {
		c.Params.K = 200
	},
	"slack-web": func(c *Config) {
		c.Params.K = 10
	},
	"short-web": func(c *Config) {
		c.Params.Length = 60
		c.Release = RangeConfig{Lo: 3, Hi: 10}
	},
	"heavy": func(c *Config) {
		c.Params.Mass = 120
		c.Params.VTerm = 70
	},
	"low-anchor": func(c *Config) {
		c.Params.Height = 200
	},
	"fixed-step": func(c *Config) {
		c.Solver.Method = "rk4"
		c.Solver.MaxStep = 0.01
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
