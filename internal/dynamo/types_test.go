package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	assert.Equal(t, State{5, 7, 9}, a.Add(b))
	assert.Equal(t, State{3, 3, 3}, b.Sub(a))
	assert.Equal(t, State{2, 4, 6}, a.Scale(2))
	assert.Equal(t, State{2.5, 3.5, 4.5}, a.Lerp(b, 0.5))
	assert.Equal(t, 6.0, State{-6, 2, 5}.MaxAbs())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.1, cfg.MaxStep)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max step", func(c *Config) { c.MaxStep = 0 }},
		{"min above max", func(c *Config) { c.MinStep = 1 }},
		{"zero atol", func(c *Config) { c.ATol = 0 }},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }},
		{"zero state bound", func(c *Config) { c.StateBound = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrParameterBounds)
		})
	}
}

func TestTrajectory_AppendMonotonic(t *testing.T) {
	tr := NewTrajectory(4)
	assert.True(t, tr.Append(0, State{1}))
	assert.True(t, tr.Append(0.5, State{2}))
	assert.False(t, tr.Append(0.5, State{3}))
	assert.False(t, tr.Append(0.2, State{3}))
	assert.Equal(t, 2, tr.Len())

	last, x, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 0.5, last)
	assert.Equal(t, State{2}, x)
}

func TestTrajectory_Splice(t *testing.T) {
	a := NewTrajectory(3)
	a.Append(0, State{0, 10})
	a.Append(1, State{1, 11})
	a.Append(2, State{2, 12})

	b := NewTrajectory(3)
	b.Append(2, State{2, 99})
	b.Append(3, State{3, 13})
	b.Append(4, State{4, 14})

	out := a.Splice(b)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, out.Times)
	assert.Equal(t, State{2, 99}, out.States[2])
	assert.Equal(t, []float64{10, 11, 99, 13, 14}, out.Component(1))

	// inputs untouched
	assert.Equal(t, State{2, 12}, a.States[2])
}

func TestTrajectory_Empty(t *testing.T) {
	var tr *Trajectory
	assert.Equal(t, 0, tr.Len())

	_, _, ok := NewTrajectory(0).Last()
	assert.False(t, ok)
}

func TestSimulationError(t *testing.T) {
	err := error(&SimulationError{Step: 12, Time: 1.5, Wrapped: ErrDiverged})
	assert.True(t, errors.Is(err, ErrDiverged))
	assert.Equal(t, "step 12 (t=1.5000): dynamo: integration diverged", err.Error())

	var se *SimulationError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 12, se.Step)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "terminated", Terminated.String())
	assert.Equal(t, "diverged", Diverged.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		hits := make([]int32, n)
		var calls int32
		ParallelFor(n, 4, func(start, end int) {
			atomic.AddInt32(&calls, 1)
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}
