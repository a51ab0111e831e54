package crosssection

import (
	"fmt"
	"math"

	"github.com/san-kum/dsmcdb/internal/physics"
)

// lotzSamples is the number of log-spaced speeds scanned by Lotz.MaxSigmaV.
const lotzSamples = 512

// LotzShell is one subshell of the Lotz ionization formula.
type LotzShell struct {
	Binding   float64 `yaml:"binding" toml:"binding"`     // P, J
	Electrons float64 `yaml:"electrons" toml:"electrons"` // q
	A         float64 `yaml:"a" toml:"a"`                 // m²·J²
	B         float64 `yaml:"b" toml:"b"`
	C         float64 `yaml:"c" toml:"c"`
}

// Lotz is the semi-empirical electron-impact ionization cross section
//
//	σ(E) = Σ aᵢqᵢ ln(E/Pᵢ)/(E·Pᵢ) · (1 - bᵢ exp(-cᵢ(E/Pᵢ - 1)))   for E > Pᵢ
//
// with E = ½μv².
type Lotz struct {
	shells []LotzShell
	mu     physics.ReducedMass
	vMin   float64 // threshold speed of the lowest shell
	minP   float64 // lowest binding energy, J
}

func NewLotz(shells []LotzShell, mu physics.ReducedMass) (*Lotz, error) {
	if len(shells) == 0 {
		return nil, fmt.Errorf("%w: lotz model without shells", ErrBadParameter)
	}
	if !mu.IsSet() || mu.Value <= 0 {
		return nil, fmt.Errorf("%w: lotz needs a finite reduced mass", ErrBadParameter)
	}
	minP := math.Inf(1)
	for _, s := range shells {
		if s.Binding <= 0 || s.Electrons < 0 {
			return nil, fmt.Errorf("%w: lotz shell binding=%g electrons=%g", ErrBadParameter, s.Binding, s.Electrons)
		}
		minP = math.Min(minP, s.Binding)
	}
	out := make([]LotzShell, len(shells))
	copy(out, shells)
	return &Lotz{shells: out, mu: mu, vMin: mu.SpeedFromEnergy(minP), minP: minP}, nil
}

func (l *Lotz) Name() string { return "lotz" }

// Threshold returns the lowest binding energy in joules.
func (l *Lotz) Threshold() float64 { return l.minP }

func (l *Lotz) Sigma(v float64) (float64, error) {
	e := l.mu.EnergyFromSpeed(v)
	sum := 0.0
	for _, s := range l.shells {
		if e <= s.Binding {
			continue
		}
		u := e / s.Binding
		sum += s.A * s.Electrons * math.Log(u) / (e * s.Binding) * (1 - s.B*math.Exp(-s.C*(u-1)))
	}
	return math.Max(sum, 0), nil
}

// MaxSigmaV scans log-spaced speeds between the threshold and vMax; σ·v
// peaks and then decays for this model.
func (l *Lotz) MaxSigmaV(vMax float64) (SigmaV, error) {
	var best SigmaV
	if vMax <= l.vMin {
		return best, nil
	}
	ratio := math.Log(vMax / l.vMin)
	for i := 1; i < lotzSamples; i++ {
		v := l.vMin * math.Exp(ratio*float64(i)/lotzSamples)
		s, _ := l.Sigma(v)
		if prod := s * v; prod > best.Product {
			best = SigmaV{Product: prod, Velocity: v}
		}
	}
	s, _ := l.Sigma(vMax)
	if prod := s * vMax; prod > best.Product {
		best = SigmaV{Product: prod, Velocity: vMax}
	}
	return best, nil
}
