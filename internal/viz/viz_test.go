package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/vecmath"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(3, 2)
	assert.Equal(t, 6, c.DotWidth())
	assert.Equal(t, 8, c.DotHeight())

	c.Set(0, 0)
	c.Set(5, 7)
	assert.True(t, c.IsSet(0, 0))
	assert.True(t, c.IsSet(5, 7))
	assert.False(t, c.IsSet(1, 0))

	lines := strings.Split(c.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []rune{0x2801, 0x2800, 0x2800}, []rune(lines[0]))
	assert.Equal(t, []rune{0x2800, 0x2800, 0x2880}, []rune(lines[1]))

	c.Unset(0, 0)
	assert.False(t, c.IsSet(0, 0))
	c.Clear()
	assert.False(t, c.IsSet(5, 7))
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4, 0)
	c.Set(0, 4)
	assert.Equal(t, strings.Repeat(string(rune(brailleBlank)), 2), c.String())
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.Line(0, 0, 9, 7)
	assert.True(t, c.IsSet(0, 0))
	assert.True(t, c.IsSet(9, 7))

	c.Clear()
	c.Line(8, 3, 0, 3)
	for x := 0; x <= 8; x++ {
		assert.True(t, c.IsSet(x, 3), "x=%d", x)
	}
}

func TestViewportKeepsAspect(t *testing.T) {
	c := NewCanvas(40, 10) // 80x40 dots
	v := Fit(c, 0, 100, 0, 100)

	x0, y0 := v.Dot(0, 0)
	x1, y1 := v.Dot(100, 100)
	assert.Less(t, y1, y0, "world y grows upward")
	assert.InDelta(t, x1-x0, y0-y1, 1, "one scale on both axes")

	for _, p := range [][2]float64{{0, 0}, {100, 100}, {50, 50}} {
		x, y := v.Dot(p[0], p[1])
		assert.True(t, x >= 0 && x < c.DotWidth() && y >= 0 && y < c.DotHeight(), "%v -> (%d,%d)", p, x, y)
	}
}

func TestViewportDegenerateBox(t *testing.T) {
	c := NewCanvas(10, 5)
	v := Fit(c, 3, 3, 7, 7)
	x, y := v.Dot(3, 7)
	assert.True(t, x >= 0 && x < c.DotWidth())
	assert.True(t, y >= 0 && y < c.DotHeight())
}

// arc is a short fake swing: tethered until t=1, then falling to the ground.
func arc() *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(4)
	tr.Append(0, dynamo.State{-10, 10, 0, 0})
	tr.Append(1, dynamo.State{0, 5, 10, 0})
	tr.Append(2, dynamo.State{10, 2, 10, -5})
	tr.Append(3, dynamo.State{20, 0, 10, -10})
	return tr
}

func newTestReplay(t *testing.T) *Model {
	t.Helper()
	m, err := NewReplay(arc(), Options{Release: 1, Anchor: vecmath.New(0, 15), Cols: 30, Rows: 10})
	require.NoError(t, err)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReplayRejectsEmpty(t *testing.T) {
	_, err := NewReplay(dynamo.NewTrajectory(0), Options{})
	assert.ErrorIs(t, err, ErrEmptyTrajectory)

	tr := dynamo.NewTrajectory(1)
	tr.Append(0, dynamo.State{1, 2})
	_, err = NewReplay(tr, Options{})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestReplayTickAdvancesAndStops(t *testing.T) {
	m := newTestReplay(t)
	require.NotNil(t, m.Init())

	_, cmd := m.Update(TickMsg{})
	assert.NotNil(t, cmd)
	assert.InDelta(t, 1.0/fps, m.Clock(), 1e-12)

	m.Update(key("+"))
	m.Update(key("+"))
	assert.Equal(t, 4.0, m.Speed())
	for i := 0; i < 100; i++ {
		m.Update(TickMsg{})
	}
	assert.Equal(t, 3.0, m.Clock())
	assert.True(t, m.Paused())

	// space at the end restarts
	m.Update(key(" "))
	assert.False(t, m.Paused())
	assert.Equal(t, 0.0, m.Clock())
}

func TestReplayKeys(t *testing.T) {
	m := newTestReplay(t)

	m.Update(key(" "))
	assert.True(t, m.Paused())
	m.Update(TickMsg{})
	assert.Equal(t, 0.0, m.Clock(), "paused playback holds the clock")

	m.Update(key("]"))
	assert.InDelta(t, 3.0/scrubSteps, m.Clock(), 1e-12)
	m.Update(key("left"))
	m.Update(key("["))
	assert.Equal(t, 0.0, m.Clock(), "scrub clamps to the first sample")

	for i := 0; i < 20; i++ {
		m.Update(key("-"))
	}
	assert.Equal(t, minSpeed, m.Speed())

	first := m.Theme().Name
	m.Update(key("t"))
	assert.NotEqual(t, first, m.Theme().Name)

	m.Update(key("r"))
	assert.False(t, m.Paused())

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReplaySampleInterpolates(t *testing.T) {
	m := newTestReplay(t)
	m.seek(1.5)
	s := m.Sample()
	assert.InDelta(t, 5.0, s[0], 1e-12)
	assert.InDelta(t, 3.5, s[1], 1e-12)
}

func TestReplayView(t *testing.T) {
	m := newTestReplay(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "SWING")
	assert.Contains(t, view, "time")

	m.seek(2.5)
	view = m.View()
	assert.Contains(t, view, "FLIGHT")
	assert.Contains(t, view, "height [m]")

	m.Update(key("?"))
	assert.Contains(t, m.View(), "restart")
}

func TestThemes(t *testing.T) {
	assert.Equal(t, ThemeOcean, GetTheme("ocean"))
	assert.Equal(t, Themes[0], GetTheme("nope"))
	assert.Len(t, ThemeNames(), len(Themes))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "██░░", ProgressBar(0.5, 4))
	assert.Equal(t, "░░░░", ProgressBar(-1, 4))
	assert.Equal(t, "████", ProgressBar(2, 4))
}
