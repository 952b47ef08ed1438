package metrics

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// EnergyModel evaluates kinetic plus strain energy. physics.System
// satisfies it.
type EnergyModel interface {
	Energy(x, v float64) float64
}

// Energy reports the mean mechanical energy over the run in J.
type Energy struct {
	name        string
	model       EnergyModel
	samples     int
	totalEnergy float64
}

func NewEnergy(model EnergyModel) *Energy {
	return &Energy{name: "energy", model: model}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.State, force, t float64) {
	e.totalEnergy += e.model.Energy(s.X, s.V)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the initial energy.
// Only meaningful for unforced undamped runs, where it measures the
// integrator's numerical dissipation.
type EnergyDrift struct {
	name          string
	model         EnergyModel
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(model EnergyModel) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", model: model}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.State, force, t float64) {
	energy := e.model.Energy(s.X, s.V)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
