package physics

import (
	"errors"
	"fmt"
	"math"
)

// Physical constants (CODATA 2018, exact where defined).
const (
	Boltzmann      = 1.380649e-23    // J/K
	ElectronVolt   = 1.602176634e-19 // J
	ElectronMass   = 9.1093837015e-31
	AtomicMassUnit = 1.66053906660e-27
)

// ErrNonFiniteMass is returned when m1+m2 is NaN or infinite.
var ErrNonFiniteMass = errors.New("physics: non-finite total mass")

// ReducedMass caches μ and the two ratios used by the collision kinematics.
type ReducedMass struct {
	Value  float64 // μ
	OverM1 float64 // μ/m1 = m2/(m1+m2)
	OverM2 float64 // μ/m2 = m1/(m1+m2)
}

// Unset is the default reduced mass of an equation that has not been
// loaded. Its value is +Inf.
func Unset() ReducedMass {
	return ReducedMass{Value: math.Inf(1), OverM1: 0.5, OverM2: 0.5}
}

// NewReducedMass fails only when m1+m2 is not finite. Two zero masses give
// the Unset sentinel.
func NewReducedMass(m1, m2 float64) (ReducedMass, error) {
	total := m1 + m2
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return ReducedMass{}, fmt.Errorf("%w: m1=%g m2=%g", ErrNonFiniteMass, m1, m2)
	}
	if total == 0 {
		return Unset(), nil
	}
	return ReducedMass{
		Value:  m1 * m2 / total,
		OverM1: m2 / total,
		OverM2: m1 / total,
	}, nil
}

// IsSet reports whether r came from two non-zero masses.
func (r ReducedMass) IsSet() bool { return !math.IsInf(r.Value, 1) }

// Swap returns the reduced mass of the reversed pair (m2, m1).
func (r ReducedMass) Swap() ReducedMass {
	return ReducedMass{Value: r.Value, OverM1: r.OverM2, OverM2: r.OverM1}
}

// SpeedFromEnergy converts a relative kinetic energy into a relative speed,
// v = sqrt(2E/μ).
func (r ReducedMass) SpeedFromEnergy(e float64) float64 {
	if e <= 0 {
		return 0
	}
	return math.Sqrt(2 * e / r.Value)
}

// EnergyFromSpeed is the inverse of SpeedFromEnergy, E = ½μv².
func (r ReducedMass) EnergyFromSpeed(v float64) float64 {
	return 0.5 * r.Value * v * v
}
