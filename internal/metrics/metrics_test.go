package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrajectory() *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(3)
	tr.Append(0, dynamo.State{0, 10, 3, 4})
	tr.Append(1, dynamo.State{2, 12, 6, 8})
	tr.Append(2, dynamo.State{5, 0, 1, -1})
	return tr
}

func TestKinematicMetrics(t *testing.T) {
	values := Collect(sampleTrajectory(), NewRange(), NewApex(), NewPeakSpeed())

	assert.Equal(t, 5.0, values["range"])
	assert.Equal(t, 12.0, values["apex"])
	assert.Equal(t, 10.0, values["peak_speed"])
}

func TestCollectResets(t *testing.T) {
	apex := NewApex()
	apex.Observe(dynamo.State{0, 1000, 0, 0}, nil, 0)

	values := Collect(sampleTrajectory(), apex)
	assert.Equal(t, 12.0, values["apex"])
}

func TestEmptyTrajectory(t *testing.T) {
	values := Collect(dynamo.NewTrajectory(0), NewRange(), NewApex(), NewPeakSpeed())
	for name, v := range values {
		assert.Zero(t, v, name)
	}
}

func TestPeakTensionStopsAtRelease(t *testing.T) {
	sys, err := physics.NewSystemConfig(physics.DefaultParams())
	require.NoError(t, err)

	anchor := physics.DefaultParams().Anchor()
	stretched := dynamo.State{anchor.X, anchor.Y - 110, 0, 0}
	slack := dynamo.State{anchor.X, anchor.Y - 50, 0, 0}

	m := NewPeakTension(sys, 1)
	m.Observe(slack, nil, 0)
	assert.Zero(t, m.Value())

	m.Observe(stretched, nil, 0.5)
	assert.InDelta(t, 40*10, m.Value(), 1e-9)

	far := dynamo.State{anchor.X, anchor.Y - 200, 0, 0}
	m.Observe(far, nil, 2)
	assert.InDelta(t, 400, m.Value(), 1e-9)
}

func TestEnergyLoss(t *testing.T) {
	p := physics.DefaultParams()
	free, err := physics.NewSystemConfig(p.With(physics.Overrides{K: physics.Ptr(0.0)}))
	require.NoError(t, err)

	m := NewEnergyLoss(free)
	m.Observe(dynamo.State{0, 100, 0, 0}, nil, 0)
	m.Observe(dynamo.State{0, 50, 0, 0}, nil, 1)
	assert.InDelta(t, 0.5, m.Value(), 1e-12)

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestStandardOnSimulatedRun(t *testing.T) {
	p := physics.DefaultParams()
	res, err := sim.New(p, nil).Run(context.Background(), 8, vecmath.Zero)
	require.NoError(t, err)

	ms, err := Standard(p, 8)
	require.NoError(t, err)
	values := Collect(res.Trajectory, ms...)

	assert.InDelta(t, res.Range, values["range"], 1e-12)
	assert.GreaterOrEqual(t, values["apex"], p.InitialPosition().Y)
	assert.Greater(t, values["peak_speed"], 0.0)
	assert.Greater(t, values["peak_tension"], 0.0)

	// Drag only removes energy.
	loss := values["energy_loss"]
	assert.Greater(t, loss, 0.0)
	assert.LessOrEqual(t, loss, 1.0)
	assert.False(t, math.IsNaN(loss))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "apex=2.0000 range=1.5000", Format(map[string]float64{"range": 1.5, "apex": 2}))
}
