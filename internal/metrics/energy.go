package metrics

import (
	"math"

	"github.com/san-kum/dsmcdb/internal/sim"
)

// Temperature is the mean mixture temperature over the observed snapshots.
type Temperature struct {
	name    string
	sum     float64
	samples int
}

func NewTemperature() *Temperature {
	return &Temperature{name: "temperature"}
}

func (m *Temperature) Name() string { return m.name }

func (m *Temperature) Observe(s sim.Snapshot) {
	m.sum += s.Temperature
	m.samples++
}

func (m *Temperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Temperature) Reset() {
	m.sum = 0
	m.samples = 0
}

// EnergyDrift is the largest relative change of kinetic plus absorbed
// energy since the first snapshot.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Snapshot) {
	energy := s.Total()
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
