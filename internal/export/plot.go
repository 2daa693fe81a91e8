// Package export renders trajectories to image files with gonum/plot. The
// output format follows the file extension (png, svg, pdf, eps, jpg, tif).
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/experiment"
)

const (
	defaultWidth  = 8 * vg.Inch
	defaultHeight = 6 * vg.Inch
)

var (
	pathColor    = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	groundColor  = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	releaseColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// Component names the state columns for axis labels.
var Component = []string{"x (m)", "y (m)", "vx (m/s)", "vy (m/s)"}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.Add(plotter.NewGrid())
}

// Trajectory plots the swing path in the x-y plane with the ground line
// and, when release is inside the trajectory, the release point.
func Trajectory(tr *dynamo.Trajectory, release float64, title string) (*plot.Plot, error) {
	if tr.Len() == 0 {
		return nil, fmt.Errorf("export: empty trajectory")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = Component[0]
	p.Y.Label.Text = Component[1]
	stylePlot(p)

	pts := make(plotter.XYs, tr.Len())
	minX, maxX := tr.States[0][0], tr.States[0][0]
	for i, s := range tr.States {
		pts[i].X, pts[i].Y = s[0], s[1]
		minX = min(minX, s[0])
		maxX = max(maxX, s[0])
	}
	path, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	path.LineStyle.Width = vg.Points(2)
	path.LineStyle.Color = pathColor
	p.Add(path)
	p.Legend.Add("path", path)

	ground, err := plotter.NewLine(plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}})
	if err != nil {
		return nil, err
	}
	ground.LineStyle.Color = groundColor
	ground.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ground)

	if i := releaseIndex(tr, release); i >= 0 {
		s := tr.States[i]
		mark, err := plotter.NewScatter(plotter.XYs{{X: s[0], Y: s[1]}})
		if err != nil {
			return nil, err
		}
		mark.GlyphStyle.Shape = draw.CircleGlyph{}
		mark.GlyphStyle.Radius = vg.Points(4)
		mark.GlyphStyle.Color = releaseColor
		p.Add(mark)
		p.Legend.Add(fmt.Sprintf("release t=%.2fs", tr.Times[i]), mark)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

func releaseIndex(tr *dynamo.Trajectory, release float64) int {
	if release <= 0 {
		return -1
	}
	for i, t := range tr.Times {
		if t >= release {
			return i
		}
	}
	return -1
}

// Series plots one state component against time.
func Series(tr *dynamo.Trajectory, idx int, title string) (*plot.Plot, error) {
	if idx < 0 || idx >= len(Component) {
		return nil, fmt.Errorf("export: no state component %d", idx)
	}
	if tr.Len() == 0 {
		return nil, fmt.Errorf("export: empty trajectory")
	}
	return linePlot(title, "time (s)", Component[idx], tr.Times, tr.Component(idx))
}

// Sweep plots range against release time. Rows that did not land are
// left out.
func Sweep(rows []experiment.SweepRow, title string) (*plot.Plot, error) {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Err != nil || !r.Landed {
			continue
		}
		xs = append(xs, r.Release)
		ys = append(ys, r.Range)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("export: no landed runs to plot")
	}
	return linePlot(title, "release time (s)", "range (m)", xs, ys)
}

func linePlot(title, xlabel, ylabel string, xs, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = pathColor
	p.Add(line)
	return p, nil
}

// Save writes p to filename in the format named by its extension.
func Save(p *plot.Plot, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	return p.Save(defaultWidth, defaultHeight, filename)
}

// Write encodes p as format ("png", "svg", ...) to w.
func Write(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(defaultWidth, defaultHeight, strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
