package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/experiment"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulated(t *testing.T) *sim.Result {
	t.Helper()
	res, err := sim.New(physics.DefaultParams(), nil).Run(context.Background(), 8, vecmath.Zero)
	require.NoError(t, err)
	return res
}

func TestTrajectoryPlot(t *testing.T) {
	res := simulated(t)

	p, err := Trajectory(res.Trajectory, res.Release, "swing")
	require.NoError(t, err)
	assert.Equal(t, "swing", p.Title.Text)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, "svg"))
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestSeriesPlot(t *testing.T) {
	res := simulated(t)

	for idx := range Component {
		p, err := Series(res.Trajectory, idx, "series")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, p, "png"))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	}

	_, err := Series(res.Trajectory, 4, "bad")
	assert.Error(t, err)
}

func TestEmptyTrajectory(t *testing.T) {
	_, err := Trajectory(dynamo.NewTrajectory(0), 0, "empty")
	assert.Error(t, err)
	_, err = Series(dynamo.NewTrajectory(0), 0, "empty")
	assert.Error(t, err)
}

func TestSweepPlot(t *testing.T) {
	rows := []experiment.SweepRow{
		{Release: 6, Range: 116, Landed: true},
		{Release: 8, Range: 149, Landed: true},
		{Release: 9, Landed: false},
		{Release: 10, Err: errors.New("diverged")},
	}
	p, err := Sweep(rows, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "range (m)", p.Y.Label.Text)

	_, err = Sweep(rows[2:], "none")
	assert.Error(t, err)
}

func TestSaveByExtension(t *testing.T) {
	res := simulated(t)
	p, err := Trajectory(res.Trajectory, res.Release, "swing")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "plots")
	for _, name := range []string{"swing.png", "swing.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(p, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestReleaseIndex(t *testing.T) {
	tr := dynamo.NewTrajectory(3)
	tr.Append(0, dynamo.State{0, 1, 0, 0})
	tr.Append(1, dynamo.State{1, 1, 0, 0})
	tr.Append(2, dynamo.State{2, 0, 0, 0})

	assert.Equal(t, 1, releaseIndex(tr, 1))
	assert.Equal(t, -1, releaseIndex(tr, 0))
	assert.Equal(t, -1, releaseIndex(tr, 5))
}
