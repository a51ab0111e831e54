package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is a simulation particle. Position is not tracked; the
// collision core only ever needs velocities.
type Particle struct {
	Species  int
	Velocity r3.Vec
}

// KineticEnergy returns ½·m·|v|².
func KineticEnergy(mass float64, v r3.Vec) float64 {
	return 0.5 * mass * r3.Norm2(v)
}

// RelativeSpeed returns |v1 - v2|.
func RelativeSpeed(a, b Particle) float64 {
	return r3.Norm(r3.Sub(a.Velocity, b.Velocity))
}

// Maxwellian draws a velocity from the Maxwell-Boltzmann distribution of a
// particle with the given mass at temperature T.
func Maxwellian(rng *rand.Rand, mass, temperature float64) r3.Vec {
	if mass <= 0 || temperature <= 0 {
		return r3.Vec{}
	}
	s := math.Sqrt(Boltzmann * temperature / mass)
	return r3.Vec{X: s * rng.NormFloat64(), Y: s * rng.NormFloat64(), Z: s * rng.NormFloat64()}
}

// MeanRelativeSpeed is the mean relative speed of a thermal pair,
// sqrt(8kT/(πμ)).
func MeanRelativeSpeed(mu ReducedMass, temperature float64) float64 {
	if !mu.IsSet() || temperature <= 0 {
		return 0
	}
	return math.Sqrt(8 * Boltzmann * temperature / (math.Pi * mu.Value))
}

// Totals sums momentum and kinetic energy over a population. massOf maps a
// species index to its mass.
func Totals(particles []Particle, massOf func(int) float64) (momentum r3.Vec, energy float64) {
	for _, p := range particles {
		m := massOf(p.Species)
		momentum = r3.Add(momentum, r3.Scale(m, p.Velocity))
		energy += KineticEnergy(m, p.Velocity)
	}
	return momentum, energy
}

// Temperature returns the kinetic temperature 2E/(3Nk) of a population.
func Temperature(particles []Particle, massOf func(int) float64) float64 {
	if len(particles) == 0 {
		return 0
	}
	_, e := Totals(particles, massOf)
	return 2 * e / (3 * float64(len(particles)) * Boltzmann)
}
