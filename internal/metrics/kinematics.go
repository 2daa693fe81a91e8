package metrics

import (
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
)

// Range is the horizontal position of the last sample.
type Range struct {
	name string
	x    float64
}

func NewRange() *Range { return &Range{name: "range"} }

func (r *Range) Name() string { return r.name }

func (r *Range) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 1 {
		return
	}
	r.x = x[0]
}

func (r *Range) Value() float64 { return r.x }

func (r *Range) Reset() { r.x = 0 }

// Apex is the greatest height reached.
type Apex struct {
	name string
	y    float64
}

func NewApex() *Apex { return &Apex{name: "apex", y: math.Inf(-1)} }

func (a *Apex) Name() string { return a.name }

func (a *Apex) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 2 {
		return
	}
	a.y = math.Max(a.y, x[1])
}

func (a *Apex) Value() float64 {
	if math.IsInf(a.y, -1) {
		return 0
	}
	return a.y
}

func (a *Apex) Reset() { a.y = math.Inf(-1) }

// PeakSpeed is the greatest speed reached.
type PeakSpeed struct {
	name  string
	speed float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{name: "peak_speed"} }

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 4 {
		return
	}
	p.speed = math.Max(p.speed, math.Hypot(x[2], x[3]))
}

func (p *PeakSpeed) Value() float64 { return p.speed }

func (p *PeakSpeed) Reset() { p.speed = 0 }
