package viz

import (
	"math"
	"strings"
)

const brailleBlank = 0x2800

// dots maps a sub-cell (row, col) to its braille bit. Each terminal cell
// holds a 2x4 dot block, numbered
//
//	1 4
//	2 5
//	3 6
//	7 8
var dots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot matrix of Cols x Rows terminal cells, addressed
// in dots: (0,0) is the top-left dot and the canvas is 2*Cols x 4*Rows dots.
type Canvas struct {
	Cols, Rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	c := &Canvas{Cols: cols, Rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

// DotWidth and DotHeight give the canvas size in dots.
func (c *Canvas) DotWidth() int  { return 2 * c.Cols }
func (c *Canvas) DotHeight() int { return 4 * c.Rows }

func (c *Canvas) cell(x, y int) (int, rune, bool) {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return 0, 0, false
	}
	return (y/4)*c.Cols + x/2, dots[y%4][x%2], true
}

// Set lights a dot. Points off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] &^= bit
	}
}

// IsSet reports whether a dot is lit.
func (c *Canvas) IsSet(x, y int) bool {
	i, bit, ok := c.cell(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
	}
}

// Line draws a Bresenham segment between two dots.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Blob lights a (2r+1)-dot square around a point.
func (c *Canvas) Blob(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Rows * (c.Cols*3 + 1))
	for r := 0; r < c.Rows; r++ {
		for _, ch := range c.cells[r*c.Cols : (r+1)*c.Cols] {
			b.WriteRune(ch)
		}
		if r < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world metres onto canvas dots with one scale on both axes,
// so the swing keeps its shape. Y grows upward in the world and downward
// on the canvas.
type Viewport struct {
	MinX, MaxX, MinY, MaxY float64

	scale      float64
	offX, offY float64
}

// Fit returns a viewport framing the box [minX,maxX]x[minY,maxY] on c with a
// small margin.
func Fit(c *Canvas, minX, maxX, minY, maxY float64) Viewport {
	const margin = 0.05
	if !(maxX > minX) {
		minX, maxX = minX-1, minX+1
	}
	if !(maxY > minY) {
		minY, maxY = minY-1, minY+1
	}
	padX, padY := margin*(maxX-minX), margin*(maxY-minY)
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY

	w, h := c.DotWidth()-1, c.DotHeight()-1
	scale := math.Min(float64(w)/(maxX-minX), float64(h)/(maxY-minY))
	return Viewport{
		MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY,
		scale: scale,
		offX:  (float64(w) - scale*(maxX-minX)) / 2,
		offY:  (float64(h) - scale*(maxY-minY)) / 2,
	}
}

// Dot converts a world point to canvas dots.
func (v Viewport) Dot(x, y float64) (int, int) {
	px := v.offX + (x-v.MinX)*v.scale
	py := v.offY + (v.MaxY-y)*v.scale
	return int(math.Round(px)), int(math.Round(py))
}
