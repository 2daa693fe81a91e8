// Package metrics reduces a swing trajectory to scalar figures: range,
// apex, peak speed, peak tether tension and dissipated energy.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/physics"
)

// Metric observes a trajectory one sample at a time.
type Metric interface {
	Name() string
	Observe(x dynamo.State, u dynamo.Control, t float64)
	Value() float64
	Reset()
}

// Collect resets each metric, feeds it every sample of tr and returns the
// values keyed by name.
func Collect(tr *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < tr.Len(); i++ {
		for _, m := range ms {
			m.Observe(tr.States[i], nil, tr.Times[i])
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Standard returns the full metric set for a run of p released at release.
func Standard(p physics.Params, release float64) ([]Metric, error) {
	swing, err := physics.NewSystemConfig(p)
	if err != nil {
		return nil, err
	}
	free, err := physics.NewSystemConfig(p.With(physics.Overrides{K: physics.Ptr(0.0)}))
	if err != nil {
		return nil, err
	}
	return []Metric{
		NewRange(),
		NewApex(),
		NewPeakSpeed(),
		NewPeakTension(swing, release),
		NewEnergyLoss(free),
	}, nil
}

// Format renders values as "name=value" pairs in name order.
func Format(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4f", name, values[name])
	}
	return strings.Join(parts, " ")
}
