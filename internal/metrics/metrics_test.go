package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dsmcdb/internal/sim"
)

func TestTemperature(t *testing.T) {
	m := NewTemperature()
	if m.Value() != 0 {
		t.Error("expected zero before any sample")
	}

	m.Observe(sim.Snapshot{Temperature: 300})
	m.Observe(sim.Snapshot{Temperature: 500})
	if m.Value() != 400 {
		t.Errorf("expected mean 400, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(sim.Snapshot{Energy: 10})
	m.Observe(sim.Snapshot{Energy: 9, Absorbed: 1})
	if m.Value() != 0 {
		t.Errorf("absorbed energy should count as conserved, drift %g", m.Value())
	}

	m.Observe(sim.Snapshot{Energy: 10.5, Absorbed: 1})
	m.Observe(sim.Snapshot{Energy: 10})
	if math.Abs(m.Value()-0.15) > 1e-12 {
		t.Errorf("expected max drift 0.15, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestAcceptanceRate(t *testing.T) {
	m := NewAcceptanceRate(100)

	m.Observe(sim.Snapshot{Step: 0, Accepted: 0})
	m.Observe(sim.Snapshot{Step: 1, Accepted: 30})
	m.Observe(sim.Snapshot{Step: 2, Accepted: 50})
	if m.Value() != 0.4 {
		t.Errorf("expected 0.4, got %g", m.Value())
	}

	if NewAcceptanceRate(0).Value() != 0 {
		t.Error("expected zero without pairs")
	}
}

func TestRelaxation(t *testing.T) {
	m := NewRelaxation(0.05)

	m.Observe(sim.Snapshot{Step: 0, Temperature: 500, Species: []float64{100, 900}})
	if m.Value() != -1 {
		t.Errorf("not relaxed yet, got %g", m.Value())
	}

	m.Observe(sim.Snapshot{Step: 10, Temperature: 500, Species: []float64{490, 0, 510}})
	m.Observe(sim.Snapshot{Step: 20, Temperature: 500, Species: []float64{500, 0, 500}})
	if m.Value() != 10 {
		t.Errorf("expected relaxation at step 10, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != -1 {
		t.Error("expected -1 after reset")
	}
}
