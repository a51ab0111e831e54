package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestReducedMassSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		m1 := rng.Float64()*100 + 1e-3
		m2 := rng.Float64()*100 + 1e-3

		a, err := NewReducedMass(m1, m2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := NewReducedMass(m2, m1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if a.Value != b.Value {
			t.Fatalf("μ(%g,%g)=%g but μ(%g,%g)=%g", m1, m2, a.Value, m2, m1, b.Value)
		}
		if math.Abs(a.OverM1+a.OverM2-1) > 1e-15 {
			t.Errorf("ratios do not sum to one: %g + %g", a.OverM1, a.OverM2)
		}
		if math.Abs(a.OverM1*m1-a.Value) > 1e-12*a.Value {
			t.Errorf("OverM1*m1 = %g, want μ = %g", a.OverM1*m1, a.Value)
		}
	}
}

func TestReducedMassEdgeCases(t *testing.T) {
	rm, err := NewReducedMass(0, 0)
	if err != nil {
		t.Fatalf("zero masses should not fail: %v", err)
	}
	if !math.IsInf(rm.Value, 1) || rm.IsSet() {
		t.Errorf("expected +Inf sentinel, got %g", rm.Value)
	}

	_, err = NewReducedMass(math.Inf(1), 1)
	if !errors.Is(err, ErrNonFiniteMass) {
		t.Errorf("expected ErrNonFiniteMass, got %v", err)
	}
	_, err = NewReducedMass(math.NaN(), 1)
	if !errors.Is(err, ErrNonFiniteMass) {
		t.Errorf("expected ErrNonFiniteMass, got %v", err)
	}
}

func TestReducedMassSwap(t *testing.T) {
	rm, _ := NewReducedMass(2, 6)
	sw := rm.Swap()
	if sw.Value != rm.Value || sw.OverM1 != rm.OverM2 || sw.OverM2 != rm.OverM1 {
		t.Errorf("swap mismatch: %+v vs %+v", rm, sw)
	}
}

func TestSpeedEnergyRoundTrip(t *testing.T) {
	rm, _ := NewReducedMass(ElectronMass, 200*AtomicMassUnit)
	e := 10 * ElectronVolt
	v := rm.SpeedFromEnergy(e)
	if got := rm.EnergyFromSpeed(v); math.Abs(got-e) > 1e-12*e {
		t.Errorf("round trip gave %g, want %g", got, e)
	}
	if rm.SpeedFromEnergy(-1) != 0 {
		t.Error("negative energy should map to zero speed")
	}
}

func TestMaxwellianTemperature(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	mass := 40 * AtomicMassUnit
	temp := 300.0

	particles := make([]Particle, 20000)
	for i := range particles {
		particles[i] = Particle{Velocity: Maxwellian(rng, mass, temp)}
	}

	got := Temperature(particles, func(int) float64 { return mass })
	if math.Abs(got-temp)/temp > 0.03 {
		t.Errorf("sampled temperature %g, want ~%g", got, temp)
	}
}

func TestTotals(t *testing.T) {
	particles := []Particle{
		{Species: 0, Velocity: r3.Vec{X: 1}},
		{Species: 1, Velocity: r3.Vec{Y: -2}},
	}
	masses := []float64{2, 3}
	p, e := Totals(particles, func(s int) float64 { return masses[s] })

	if p.X != 2 || p.Y != -6 || p.Z != 0 {
		t.Errorf("momentum = %+v", p)
	}
	if e != 0.5*2*1+0.5*3*4 {
		t.Errorf("energy = %g", e)
	}
}
