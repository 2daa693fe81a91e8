package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/vecmath"
)

const (
	fps        = 30
	panelWidth = 36
	minSpeed   = 1.0 / 16
	maxSpeed   = 64.0
	scrubSteps = 50
)

var ErrEmptyTrajectory = errors.New("trajectory has no samples")

// TickMsg advances playback by one frame.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Options configures a replay.
type Options struct {
	Title   string
	Release float64        // end of the swing phase [s]
	Anchor  vecmath.Vector // tether attachment, drawn during the swing
	Theme   string
	Speed   float64 // simulated seconds per wall second, default 1
	Cols    int     // initial canvas size in cells
	Rows    int
}

// Model replays a stored trajectory: the path drawn so far, the tether while
// the body is still attached, and a panel with the current sample.
type Model struct {
	tr     *dynamo.Trajectory
	opts   Options
	canvas *Canvas
	view   Viewport
	styles styles
	theme  int

	clock  float64
	speed  float64
	paused bool
	help   bool
}

func NewReplay(tr *dynamo.Trajectory, opts Options) (*Model, error) {
	if tr.Len() == 0 {
		return nil, ErrEmptyTrajectory
	}
	for _, s := range tr.States {
		if len(s) < 4 {
			return nil, fmt.Errorf("%w: replay needs (x, y, vx, vy) samples, got %d components", dynamo.ErrDimensionMismatch, len(s))
		}
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.Cols <= 0 {
		opts.Cols = 60
	}
	if opts.Rows <= 0 {
		opts.Rows = 20
	}
	m := &Model{
		tr:    tr,
		opts:  opts,
		theme: themeIndex(opts.Theme),
		clock: tr.Times[0],
		speed: opts.Speed,
	}
	m.styles = newStyles(Themes[m.theme])
	m.resize(opts.Cols, opts.Rows)
	return m, nil
}

// Run shows the replay full-screen until the user quits or ctx ends.
func Run(ctx context.Context, tr *dynamo.Trajectory, opts Options) error {
	m, err := NewReplay(tr, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) start() float64 { return m.tr.Times[0] }
func (m *Model) end() float64   { return m.tr.Times[m.tr.Len()-1] }

// Clock is the simulated time currently shown.
func (m *Model) Clock() float64 { return m.clock }
func (m *Model) Speed() float64 { return m.speed }
func (m *Model) Paused() bool   { return m.paused }
func (m *Model) Theme() Theme   { return Themes[m.theme] }

func (m *Model) seek(t float64) {
	m.clock = math.Min(math.Max(t, m.start()), m.end())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		scrub := (m.end() - m.start()) / scrubSteps
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.paused && m.clock >= m.end() {
				m.seek(m.start())
			}
			m.paused = !m.paused
		case "r":
			m.seek(m.start())
			m.paused = false
		case "[", "left":
			m.seek(m.clock - scrub)
		case "]", "right":
			m.seek(m.clock + scrub)
		case "+", "=":
			m.speed = math.Min(2*m.speed, maxSpeed)
		case "-":
			m.speed = math.Max(m.speed/2, minSpeed)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "?":
			m.help = !m.help
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width-panelWidth-6, msg.Height-2)

	case TickMsg:
		if !m.paused {
			m.seek(m.clock + m.speed/fps)
			if m.clock >= m.end() {
				m.paused = true
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(cols, rows int) {
	m.canvas = NewCanvas(max(cols, 10), max(rows, 5))

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := 0.0, math.Inf(-1)
	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, s := range m.tr.States {
		if len(s) >= 2 {
			grow(s[0], s[1])
		}
	}
	if m.tethered(m.start()) {
		grow(m.opts.Anchor.X, m.opts.Anchor.Y)
	}
	m.view = Fit(m.canvas, minX, maxX, minY, maxY)
}

func (m *Model) tethered(t float64) bool {
	return t < m.opts.Release
}

// Sample returns the state at the playback clock, interpolated between the
// stored samples around it.
func (m *Model) Sample() dynamo.State {
	return sampleAt(m.tr, m.clock)
}

func sampleAt(tr *dynamo.Trajectory, t float64) dynamo.State {
	n := tr.Len()
	i := sort.SearchFloat64s(tr.Times, t)
	switch {
	case i == 0:
		return tr.States[0].Clone()
	case i >= n:
		return tr.States[n-1].Clone()
	}
	t0, t1 := tr.Times[i-1], tr.Times[i]
	return tr.States[i-1].Lerp(tr.States[i], (t-t0)/(t1-t0))
}

func (m *Model) draw() {
	c, v := m.canvas, m.view
	c.Clear()

	gx0, gy := v.Dot(v.MinX, 0)
	gx1, _ := v.Dot(v.MaxX, 0)
	c.Line(gx0, gy, gx1, gy)

	cur := m.Sample()
	px, py := v.Dot(m.tr.States[0][0], m.tr.States[0][1])
	for i := 1; i < m.tr.Len() && m.tr.Times[i] <= m.clock; i++ {
		x, y := v.Dot(m.tr.States[i][0], m.tr.States[i][1])
		c.Line(px, py, x, y)
		px, py = x, y
	}
	bx, by := v.Dot(cur[0], cur[1])
	c.Line(px, py, bx, by)
	c.Blob(bx, by, 1)

	if m.tethered(m.clock) {
		ax, ay := v.Dot(m.opts.Anchor.X, m.opts.Anchor.Y)
		c.Blob(ax, ay, 1)
		c.Line(ax, ay, bx, by)
	}
}

func (m *Model) View() string {
	m.draw()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.canvas.String()),
		m.panel(),
	)
}

func (m *Model) panel() string {
	st := m.styles
	cur := m.Sample()
	speed := vecmath.New(cur[2], cur[3]).Norm()

	var b strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "web swing replay"
	}
	b.WriteString(st.title.Render(title) + "\n\n")

	switch {
	case m.paused:
		b.WriteString(st.paused.Render("PAUSED"))
	case m.tethered(m.clock):
		b.WriteString(st.swing.Render("SWING"))
	default:
		b.WriteString(st.flight.Render("FLIGHT"))
	}
	b.WriteString("\n\n")

	row := func(label, format string, args ...any) {
		b.WriteString(st.label.Render(fmt.Sprintf("%-9s", label)))
		b.WriteString(st.value.Render(fmt.Sprintf(format, args...)))
		b.WriteByte('\n')
	}
	row("time", "%8.2f s", m.clock)
	row("release", "%8.2f s", m.opts.Release)
	row("x", "%8.2f m", cur[0])
	row("y", "%8.2f m", cur[1])
	row("speed", "%8.2f m/s", speed)
	row("playback", "%8.3gx", m.speed)

	frac := 0.0
	if span := m.end() - m.start(); span > 0 {
		frac = (m.clock - m.start()) / span
	}
	b.WriteString("\n" + ProgressBar(frac, panelWidth-4) + "\n")

	if h := m.heightHistory(panelWidth - 14); len(h) > 1 {
		b.WriteString("\n" + asciigraph.Plot(h,
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-14),
			asciigraph.Caption("height [m]"),
		) + "\n")
	}

	if m.help {
		b.WriteString("\n" + st.hint.Render(
			"space pause  r restart\n[ ] scrub  + - speed\nt theme  q quit") + "\n")
	} else {
		b.WriteString("\n" + st.hint.Render("? help") + "\n")
	}
	return st.panel.Width(panelWidth).Render(b.String())
}

// heightHistory samples y from the start of the run to the clock at up to
// n evenly spaced times.
func (m *Model) heightHistory(n int) []float64 {
	span := m.clock - m.start()
	if span <= 0 || n < 2 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		t := m.start() + span*float64(i)/float64(n-1)
		out[i] = sampleAt(m.tr, t)[1]
	}
	return out
}
