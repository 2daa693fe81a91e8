package metrics

import (
	"math"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/physics"
)

// PeakTension is the largest tether tension seen up to the release time.
type PeakTension struct {
	name    string
	sys     *physics.SystemConfig
	release float64
	peak    float64
}

func NewPeakTension(sys *physics.SystemConfig, release float64) *PeakTension {
	return &PeakTension{name: "peak_tension", sys: sys, release: release}
}

func (p *PeakTension) Name() string { return p.name }

func (p *PeakTension) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if t > p.release || len(x) < 2 {
		return
	}
	p.peak = math.Max(p.peak, p.sys.TensionAt(x))
}

func (p *PeakTension) Value() float64 { return p.peak }

func (p *PeakTension) Reset() { p.peak = 0 }

// EnergyLoss is the fraction of the initial mechanical energy gone by the
// last sample. Pass a system without the tether so that only kinetic and
// gravitational energy are counted.
type EnergyLoss struct {
	name          string
	dyn           dynamo.Hamiltonian
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyLoss(dyn dynamo.Hamiltonian) *EnergyLoss {
	return &EnergyLoss{name: "energy_loss", dyn: dyn}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(x dynamo.State, u dynamo.Control, t float64) {
	energy := e.dyn.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyLoss) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
