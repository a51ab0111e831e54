package crosssection

import (
	"fmt"
	"math"

	"github.com/san-kum/dsmcdb/internal/physics"
)

// Constant is a velocity-independent cross section.
type Constant struct {
	value float64
}

func NewConstant(sigma float64) (*Constant, error) {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: constant cross section %g", ErrBadParameter, sigma)
	}
	return &Constant{value: sigma}, nil
}

func (c *Constant) Name() string { return "constant" }

func (c *Constant) Sigma(float64) (float64, error) { return c.value, nil }

func (c *Constant) MaxSigmaV(vMax float64) (SigmaV, error) { return monotonicMax(c, vMax) }

// vhsFloor keeps the VHS expression finite at v = 0.
const vhsFloor = 1e-300

// VHSParams are the variable hard sphere parameters of a species pair.
type VHSParams struct {
	CrossSection float64 `yaml:"cross_section" toml:"cross_section"` // σ₀, m²
	TRef         float64 `yaml:"t_ref" toml:"t_ref"`                 // K
	ViscTLaw     float64 `yaml:"visc_t_law" toml:"visc_t_law"`       // ω, viscosity-temperature exponent
	VSSParamInv  float64 `yaml:"vss_param_inv" toml:"vss_param_inv"` // 1/α, used by the VSS collision model
}

// VHS is the variable hard sphere model
//
//	σ(v) = σ₀ · (2kT_ref/(μv² + ε))^(ω-½) / Γ(5/2-ω)
type VHS struct {
	params   VHSParams
	mu       float64
	gammaInv float64
	scale    float64 // 2kT_ref
}

func NewVHS(p VHSParams, mu physics.ReducedMass) (*VHS, error) {
	if p.CrossSection < 0 || p.TRef <= 0 {
		return nil, fmt.Errorf("%w: vhs cross_section=%g t_ref=%g", ErrBadParameter, p.CrossSection, p.TRef)
	}
	if !mu.IsSet() || mu.Value <= 0 {
		return nil, fmt.Errorf("%w: vhs needs a finite reduced mass", ErrBadParameter)
	}
	g := math.Gamma(2.5 - p.ViscTLaw)
	if g == 0 || math.IsInf(g, 0) || math.IsNaN(g) {
		return nil, fmt.Errorf("%w: Γ(5/2-ω) undefined for ω=%g", ErrBadParameter, p.ViscTLaw)
	}
	return &VHS{
		params:   p,
		mu:       mu.Value,
		gammaInv: 1 / g,
		scale:    2 * physics.Boltzmann * p.TRef,
	}, nil
}

func (m *VHS) Name() string { return "vhs" }

func (m *VHS) Params() VHSParams { return m.params }

func (m *VHS) Sigma(v float64) (float64, error) {
	ratio := m.scale / (m.mu*v*v + vhsFloor)
	return m.params.CrossSection * math.Pow(ratio, m.params.ViscTLaw-0.5) * m.gammaInv, nil
}

// MaxSigmaV needs no search: σ·v grows monotonically with v.
func (m *VHS) MaxSigmaV(vMax float64) (SigmaV, error) { return monotonicMax(m, vMax) }

// Averaged combines two models through their mean diameter,
// σ = ¼(√σ₀ + √σ₁)².
type Averaged struct {
	first, second Model
}

func NewAveraged(first, second Model) *Averaged {
	return &Averaged{first: first, second: second}
}

func (a *Averaged) Name() string { return "averaged" }

func (a *Averaged) Sigma(v float64) (float64, error) {
	s0, err := a.first.Sigma(v)
	if err != nil {
		return 0, err
	}
	s1, err := a.second.Sigma(v)
	if err != nil {
		return 0, err
	}
	d := math.Sqrt(s0) + math.Sqrt(s1)
	return 0.25 * d * d, nil
}

// MaxSigmaV assumes both components are monotonic (constant or VHS).
func (a *Averaged) MaxSigmaV(vMax float64) (SigmaV, error) { return monotonicMax(a, vMax) }
